package simplecase

import (
	"context"
	"fmt"
	"slices"
)

// Artifact is a blackboard artifact: a typed finding attached to an object,
// such as a web bookmark or a hash-set hit. Artifacts are items but not
// content; they have no children and no place in the object tree.
type Artifact struct {
	id           int64
	objectID     ObjectID
	artifactType string
	attrs        []ArtifactAttribute
	store        *Case
}

func newArtifact(store *Case, rec *ArtifactRecord) *Artifact {
	return &Artifact{
		id:           rec.ArtifactID,
		objectID:     rec.ObjectID,
		artifactType: rec.ArtifactType,
		attrs:        slices.Clone(rec.Attributes),
		store:        store,
	}
}

func (a *Artifact) ID() int64 { return a.id }
func (a *Artifact) ObjectID() ObjectID { return a.objectID }
func (a *Artifact) Type() string { return a.artifactType }

// Attributes returns a copy of the artifact's attributes.
func (a *Artifact) Attributes() []ArtifactAttribute {
	return slices.Clone(a.attrs)
}

// Attribute returns the value of the first attribute of type t.
func (a *Artifact) Attribute(t string) (string, bool) {
	for _, attr := range a.attrs {
		if attr.Type == t {
			return attr.Value, true
		}
	}
	return "", false
}

// Object loads the content the artifact is attached to.
func (a *Artifact) Object(ctx context.Context) (Content, error) {
	return a.store.GetContentByID(ctx, a.objectID)
}

func (a *Artifact) Accept(v ItemVisitor) error {
	return v.VisitArtifact(a)
}

func (a *Artifact) String() string {
	return fmt.Sprintf("Artifact [\tartifactID %d\tobjID %d\ttype %s\tattributes %d]\t",
		a.id, a.objectID, a.artifactType, len(a.attrs))
}
