package ptrpatch

import (
	"encoding/json"
	"strings"

	"github.com/eluv-io/errors-go"
	elog "github.com/eluv-io/log-go"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

var log = elog.Get("/ptrpatch")

// ApplyPatch applies the "replace" operations of a JSON Patch (RFC 6902) to
// doc, in order. Any other operation kind is rejected.
//
// It returns the updated document and the inverse patch: a replace operation
// per applied operation, restoring the previous value, in reverse order.
// Applying the inverse patch to the result yields the original document.
//
// The patch is all-or-nothing: when an operation fails, or a previous value
// cannot be expressed as a JSON Patch value, the operations already applied
// are reverted before the error is returned.
func ApplyPatch(doc interface{}, patch jsonpatch.Patch, opts ...Options) (interface{}, jsonpatch.Patch, error) {
	options := resolveOptions(opts)
	if options.MakeCopy {
		doc = deepCopy(doc)
		options.MakeCopy = false
	}

	type applied struct {
		pointer  string
		previous interface{}
		undo     jsonpatch.Operation
	}
	done := make([]applied, 0, len(patch))

	revert := func() {
		for j := len(done) - 1; j >= 0; j-- {
			// cannot fail: each location was just written successfully
			doc, _, _ = Replace(doc, done[j].pointer, done[j].previous, options)
		}
	}

	for i, op := range patch {
		pointer, value, err := decodeReplace(op)
		if err != nil {
			log.Debug("patch failed, reverting", "op_index", i, "reverted", len(done), "error", err)
			revert()
			return nil, nil, err
		}

		next, previous, err := Replace(doc, pointer, value, options)
		if err != nil {
			log.Debug("patch failed, reverting", "op_index", i, "reverted", len(done), "error", err)
			revert()
			return nil, nil, err
		}
		doc = next
		// recorded before building the undo: the write above must be reverted too
		done = append(done, applied{pointer: pointer, previous: previous})

		undo, err := ReplaceOperation(pointer, previous)
		if err != nil {
			log.Debug("patch failed, reverting", "op_index", i, "reverted", len(done), "error", err)
			revert()
			return nil, nil, err
		}
		done[len(done)-1].undo = undo
		log.Debug("replaced", "op_index", i, "pointer", pointer)
	}

	inverse := make(jsonpatch.Patch, 0, len(done))
	for j := len(done) - 1; j >= 0; j-- {
		inverse = append(inverse, done[j].undo)
	}
	return doc, inverse, nil
}

// decodeReplace extracts pointer and value of a replace operation.
func decodeReplace(op jsonpatch.Operation) (string, interface{}, error) {
	e := errors.Template("apply patch", errors.K.Invalid)
	kind := op.Kind()
	if !strings.EqualFold(kind, "replace") {
		return "", nil, e(errors.K.NotImplemented, "reason", reasonUnsupportedOp, "op", kind)
	}
	pointer, err := op.Path()
	if err != nil {
		return "", nil, e(err, "reason", reasonInvalidPointer)
	}
	raw, ok := op["value"]
	if !ok {
		return "", nil, e("reason", "missing value", "pointer", pointer)
	}
	if raw == nil {
		// "value": null
		return pointer, nil, nil
	}
	value, err := op.ValueInterface()
	if err != nil {
		return "", nil, e(err, "reason", "invalid value", "pointer", pointer)
	}
	return pointer, value, nil
}

// ReplaceOperation builds a JSON Patch "replace" operation. Ordered mappings
// in value are encoded as JSON objects.
func ReplaceOperation(pointer string, value interface{}) (jsonpatch.Operation, error) {
	e := errors.Template("replace operation", errors.K.Invalid, "pointer", pointer)
	b, err := json.Marshal([]map[string]interface{}{{
		"op":    "replace",
		"path":  pointer,
		"value": plainValue(value),
	}})
	if err != nil {
		return nil, e(err, "reason", "value not representable as JSON")
	}
	p, err := jsonpatch.DecodePatch(b)
	if err != nil {
		return nil, e(err)
	}
	return p[0], nil
}
