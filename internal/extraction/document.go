package extraction

// Document is an uploaded invoice file handed to the model.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}
