// Package objectkey names the blob store keys of derived and local files.
//
// Keys are generated once, when a file is added, and stored in its row.
// The case ID a generator receives identifies the open case handle, not the
// case itself, so keys from HashedGenerator and CaseScopedGenerator differ
// between sessions of the same case.
package objectkey

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for blob key generation strategies
type Generator interface {
	// GenerateKey creates a blob key for a file about to be added to a case
	GenerateKey(caseID, blobID uuid.UUID, metadata *KeyMetadata) string
}

// KeyMetadata contains information that influences key generation
type KeyMetadata struct {
	FileName string
	FileType string // "derived" or "local"
	ParentID int64  // object the file was extracted from
}

func (m *KeyMetadata) kind() string {
	if m == nil || m.FileType == "" {
		return "derived"
	}
	return sanitizePathComponent(m.FileType)
}

// FlatGenerator groups files under the object they came from:
// derived/{parent}/{blob}_{filename}
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(_, blobID uuid.UUID, metadata *KeyMetadata) string {
	parent := "0"
	if metadata != nil {
		parent = strconv.FormatInt(metadata.ParentID, 10)
	}
	return fmt.Sprintf("%s/%s/%s", metadata.kind(), parent, filename(blobID.String(), metadata))
}

// ShardedGenerator provides Git-style sharded storage:
// {type}/objects/ab/cd1234ef5678_filename
type ShardedGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(_, blobID uuid.UUID, metadata *KeyMetadata) string {
	id := strings.ReplaceAll(blobID.String(), "-", "")
	shard := min(max(g.ShardLength, 1), len(id)-1)
	return fmt.Sprintf("%s/objects/%s/%s", metadata.kind(), id[:shard], filename(id[shard:], metadata))
}

// HashedGenerator derives the key from the case handle and blob IDs, so the
// same pair always maps to the same shard.
type HashedGenerator struct {
	ShardLength int
}

func NewHashedGenerator() *HashedGenerator {
	return &HashedGenerator{
		ShardLength: 2,
	}
}

func (g *HashedGenerator) GenerateKey(caseID, blobID uuid.UUID, metadata *KeyMetadata) string {
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(caseID.String()+blobID.String())))
	shard := min(max(g.ShardLength, 1), 8)
	return fmt.Sprintf("%s/objects/%s/%s", metadata.kind(), hash[:shard], filename(hash[shard:16], metadata))
}

// CaseScopedGenerator prefixes another generator's keys with the case
// handle ID: cases/{case}/{base key}
type CaseScopedGenerator struct {
	BaseGenerator Generator
}

func NewCaseScopedGenerator(base Generator) *CaseScopedGenerator {
	if base == nil {
		base = NewShardedGenerator()
	}
	return &CaseScopedGenerator{BaseGenerator: base}
}

func (g *CaseScopedGenerator) GenerateKey(caseID, blobID uuid.UUID, metadata *KeyMetadata) string {
	return fmt.Sprintf("cases/%s/%s", caseID, g.BaseGenerator.GenerateKey(caseID, blobID, metadata))
}

// FuncGenerator adapts a function to Generator
type FuncGenerator func(caseID, blobID uuid.UUID, metadata *KeyMetadata) string

func (f FuncGenerator) GenerateKey(caseID, blobID uuid.UUID, metadata *KeyMetadata) string {
	return f(caseID, blobID, metadata)
}

// NewRecommendedGenerator returns the generator used when none is configured
func NewRecommendedGenerator() Generator {
	return NewShardedGenerator()
}

func filename(base string, metadata *KeyMetadata) string {
	if metadata == nil || metadata.FileName == "" {
		return base
	}
	return base + "_" + sanitizeFilename(metadata.FileName)
}

var unsafeChars = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "_",
)

func sanitizeFilename(name string) string {
	return unsafeChars.Replace(name)
}

func sanitizePathComponent(component string) string {
	return strings.ToLower(unsafeChars.Replace(component))
}
