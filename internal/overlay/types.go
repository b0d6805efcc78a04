package overlay

// Kind identifies which overlay variant is showing.
type Kind string

const (
	// KindHover is the hover tooltip overlay.
	KindHover Kind = "hover"

	// KindSignature is the signature-help overlay.
	KindSignature Kind = "signature-help"
)
