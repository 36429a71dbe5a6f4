package review

// Route decides where the machine goes after a validation. It returns
// Finalizing when the analysis was approved or the retry budget is spent, and
// Retrying otherwise. A negative maxRetries is treated as zero.
func Route(approved bool, retryCount, maxRetries int) Phase {
	if approved {
		return Finalizing
	}
	if retryCount < maxRetries {
		return Retrying
	}
	return Finalizing
}
