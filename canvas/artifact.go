package canvas

// ArtifactStatus is the lifecycle state of a generated artifact shape.
type ArtifactStatus string

const (
	// StatusPending marks an artifact whose generation is in flight.
	StatusPending ArtifactStatus = "pending"
	// StatusReady marks an artifact holding usable generated markup.
	StatusReady ArtifactStatus = "ready"
	// StatusFailed marks an artifact whose latest generation attempt
	// failed before any markup was ever produced.
	StatusFailed ArtifactStatus = "failed"
)

// Artifact is the canvas-resident shape that holds generated markup. It is
// owned exclusively by the canvas state; the pipeline holds only a transient
// handle during a generation run.
type Artifact struct {
	ID       ShapeID `json:"id"`
	Position Point   `json:"position"`
	Size     Size    `json:"size"`
	Markup   string  `json:"markup"`
	// SourceShapeIDs records which selection the markup was generated from.
	SourceShapeIDs []ShapeID `json:"source_shape_ids"`
	// Version increases by one for every successful generation. Zero means
	// no generation has succeeded yet.
	Version int            `json:"version"`
	Status  ArtifactStatus `json:"status"`
	// FailureReason is set only while Status is StatusFailed.
	FailureReason string `json:"failure_reason,omitempty"`
}

// ArtifactPatch is a partial update to an artifact shape. Nil fields are
// left unchanged.
type ArtifactPatch struct {
	Position       *Point
	Size           *Size
	Markup         *string
	SourceShapeIDs []ShapeID
	Version        *int
	Status         *ArtifactStatus
	FailureReason  *string
}

// Apply copies the non-nil fields of the patch onto a.
func (p ArtifactPatch) Apply(a *Artifact) {
	if p.Position != nil {
		a.Position = *p.Position
	}
	if p.Size != nil {
		a.Size = *p.Size
	}
	if p.Markup != nil {
		a.Markup = *p.Markup
	}
	if p.SourceShapeIDs != nil {
		a.SourceShapeIDs = p.SourceShapeIDs
	}
	if p.Version != nil {
		a.Version = *p.Version
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.FailureReason != nil {
		a.FailureReason = *p.FailureReason
	}
}
