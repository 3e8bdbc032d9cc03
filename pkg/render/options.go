package render

// RenderOptions tune how block renderers treat service supplied content.
type RenderOptions struct {
	// TrustResult lets renderers keep inline formatting in the final result
	// after sanitizing it. When false (the default) the result is escaped like
	// any other service text.
	TrustResult bool
}
