package scriptbridge

// Capabilities reports which named capabilities a script object exposes.
// The default event-routing admission test is attribute existence: an object
// can receive a proxied event iff it has an attribute matching the proxy's
// handler name. Implementations wrap a concrete script value representation;
// the script package provides one for Lua tables.
type Capabilities interface {
	// Has reports whether the object exposes an attribute with the given name.
	Has(name string) bool
}

// LineFunc receives one line of redirected script output, without the
// trailing newline.
type LineFunc func(line string)
