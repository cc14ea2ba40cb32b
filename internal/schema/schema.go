// Package schema provides the principal schematics shared by all other
// packages. It defines the file identifiers, directory entries and volume
// usage structures that are passed between the allocator, the directory, the
// open-file tables and the filesystem facade.
package schema
