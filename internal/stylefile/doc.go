// Package stylefile reads and writes the portable style document format.
//
// A style document is an XML file whose root element carries a version
// attribute. It holds an info block with the style's name and description,
// and a style block with one plugin element per style item. Binary
// parameter blobs are stored as lower-case hex text. Documents are written
// in ISO-8859-1 so files exported by older releases stay byte-compatible;
// characters outside that charset are written as numeric character
// references.
package stylefile
