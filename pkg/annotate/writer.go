package annotate

// Writer serializes one sample's boxes into a label payload. The set of
// formats is closed and selected by configuration: YOLO text today, COCO
// JSON alongside it. Writers must be stateless and safe for concurrent use
// across pipeline workers.
type Writer interface {
	// Name is the configuration key for the format (e.g. "yolo").
	Name() string
	// Extension is the label file suffix including the dot.
	Extension() string
	// Write renders the boxes for one image. classes is the full class
	// table in id order; width and height are the rendered image size.
	Write(boxes []Box, classes []string, width, height int) ([]byte, error)
}
