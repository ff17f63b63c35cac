package config

import "git.home.luguber.info/inful/imageforge/internal/handler"

// HandlerOptions maps the error_handling section onto handler options,
// filling unset fields with the stock defaults.
func (c *Config) HandlerOptions() handler.Options {
	opts := handler.DefaultOptions()
	eh := c.ErrorHandling

	if eh.MaxRetries != nil {
		opts.MaxRetries = *eh.MaxRetries
	}
	if eh.RetryDelayMs != nil {
		opts.RetryDelay = *eh.RetryDelayMs
	}
	if eh.MaxErrorHistory != nil {
		opts.MaxHistory = *eh.MaxErrorHistory
	}
	if eh.EnableRecovery != nil {
		opts.EnableRecovery = *eh.EnableRecovery
	}
	if eh.EnableClassification != nil {
		opts.EnableClassification = *eh.EnableClassification
	}
	if eh.EnableUserFriendlyMessages != nil {
		opts.EnableUserFriendlyMessages = *eh.EnableUserFriendlyMessages
	}
	return opts
}
