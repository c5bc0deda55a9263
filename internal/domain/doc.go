// Package domain contains the core business entities of the tablature site:
// users, tabs, articles, profile comments and backing tracks. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
