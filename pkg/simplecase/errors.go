package simplecase

import (
	"errors"
	"fmt"
	"strings"
)

// Error types
var (
	// ErrCaseClosed indicates the case store was closed before the call
	ErrCaseClosed = errors.New("case is closed")

	// ErrObjectNotFound indicates an object row does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrArtifactNotFound indicates an artifact row does not exist
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrRepositoryRequired indicates a case was opened without a repository
	ErrRepositoryRequired = errors.New("repository is required")

	// ErrBlobNotFound indicates a blob store has nothing under the key
	ErrBlobNotFound = errors.New("blob not found")

	// ErrNoBlobStore indicates file bytes were requested from a case with no blob store
	ErrNoBlobStore = errors.New("no blob store configured")

	// ErrNoDownloadURL indicates a blob store serves bytes only through Download
	ErrNoDownloadURL = errors.New("blob store has no download URLs")
)

// CoreAccessError reports that the case store could not answer a query
// about an object. The cause is available through errors.Is / errors.As.
type CoreAccessError struct {
	ObjectID ObjectID
	Op       string
	Kinds    []FileType
	Err      error
}

func (e *CoreAccessError) Error() string {
	if len(e.Kinds) == 0 {
		return fmt.Sprintf("case access %s failed for object %d: %v", e.Op, e.ObjectID, e.Err)
	}
	kinds := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		kinds[i] = string(k)
	}
	return fmt.Sprintf("case access %s [%s] failed for object %d: %v",
		e.Op, strings.Join(kinds, ","), e.ObjectID, e.Err)
}

func (e *CoreAccessError) Unwrap() error {
	return e.Err
}

// ConstructionError reports a row that cannot be turned into an entity.
type ConstructionError struct {
	ObjectID ObjectID
	Field    string
	Reason   string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("malformed object %d: %s: %s", e.ObjectID, e.Field, e.Reason)
}

// IsNotFound reports whether err means the requested object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrArtifactNotFound)
}
