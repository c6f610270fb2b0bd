// Package simplecase provides the content model of a forensic case: the
// images, volume systems, volumes, file systems, directories and files found
// in evidence, loaded lazily from a pluggable row store.
//
// A Case wraps a Repository (memory, SQLite, Postgres) and optionally a
// BlobStore holding the bytes of derived files. Entities are read-only views
// of persisted rows. They do not cache their children: Children, Parent and
// Artifacts go back to the case on every call and fail with a
// *CoreAccessError once the case is closed.
//
// Double dispatch
//
// Every entity implements Accept(ItemVisitor) and AcceptContent(ContentVisitor),
// calling exactly the visitor method for its concrete type. ItemVisitor also
// covers blackboard artifacts. ContentFunc and ItemFunc adapt a single
// function to the whole interface when a caller only needs the generic
// Content or Item.
//
// Children
//
// Containers (images, volume systems, volumes, file systems and directories)
// resolve every child row. Files only have derived children, the objects
// produced by post-processing them (archive members, extracted attachments).
package simplecase
