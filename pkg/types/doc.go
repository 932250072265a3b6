// Package types defines the style entities, the collaborator interfaces the
// style engine calls into, configuration, and the standard error values
// shared by every layer.
//
// A Style is a named, ordered snapshot of per-module edit parameters. Its
// StyleItems carry opaque parameter blobs that the engine never interprets;
// the only guarantee it gives about them is byte-exact preservation across
// the database, the in-memory list, and the XML backup file.
package types
