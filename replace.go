package ptrpatch

// Options are the options available for replace and patch operations.
type Options struct {
	// MakeCopy controls whether the document is modified in place or a copy of
	// it is modified and returned.
	//
	// If MakeCopy is false, the document passed in is mutated and the returned
	// document is the same object graph.
	//
	// If MakeCopy is true, all maps and slices of the document are copied
	// before the write, leaving the input untouched. Scalar values and the
	// new value itself are not copied.
	MakeCopy bool
}

// DefaultOptions returns the default options: in-place mutation.
func DefaultOptions() Options {
	return Options{}
}

func resolveOptions(opts []Options) Options {
	if len(opts) > 0 {
		return opts[0]
	}
	return DefaultOptions()
}

// Replace replaces the value referenced by pointer in doc with value
// (RFC 6902 "replace"). The referenced location must exist: replace never
// creates keys or array elements.
//
// It returns the updated document and the value previously stored at the
// location. The document is only modified once the location is known to
// exist, so a failed call leaves it untouched. Replacing the empty pointer
// replaces the whole document: value is returned as the new document and doc
// as the previous value.
func Replace(doc interface{}, pointer string, value interface{}, opts ...Options) (interface{}, interface{}, error) {
	options := resolveOptions(opts)

	ptr, err := ParsePointer(pointer)
	if err != nil {
		return nil, nil, err
	}
	if ptr.IsRoot() {
		return value, doc, nil
	}

	// validated on the input: failures never copy
	parent, err := ResolveParent(doc, ptr.Parent())
	if err != nil {
		return nil, nil, err
	}
	previous, idx, err := locate(parent, ptr.Last(), "replace", pointer)
	if err != nil {
		return nil, nil, err
	}

	if options.MakeCopy {
		doc = deepCopy(doc)
		// cannot fail: the copy has the same shape as the validated input
		parent, _ = ResolveParent(doc, ptr.Parent())
	}

	switch parent.Kind {
	case KindObject:
		storeKey(parent.Node, ptr.Last(), value)
	case KindArray:
		parent.Node.([]interface{})[idx] = value
	}
	return doc, previous, nil
}
