// Package mail sends the site's outgoing e-mail: account activation and
// password reset links, contact form submissions and profile comment
// notifications.
package mail
