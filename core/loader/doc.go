// Package loader mounts the HTTP features of the service on a fiber router.
//
// A feature owns a route group and its handlers:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager loads features in registration order and skips disabled ones.
// cmd/start registers catalog (the /sync trigger and run history) and
// integrity (the /integrity reports). LoadAll stops at the first feature that
// fails to load and returns the names loaded so far.
package loader
