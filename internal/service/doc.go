// Package service contains the application use cases. It orchestrates the
// stores defined in internal/store together with the mailer, the token
// service and the content file store.
//
// Services receive their dependencies through constructors and return
// sentinel errors from this package or from internal/store; callers check
// them with errors.Is.
package service
