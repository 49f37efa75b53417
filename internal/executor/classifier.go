package executor

import (
	"strings"
)

// Metadata-interpretation error signatures.
//
// These identify failures where the query itself executed but the
// result-shape translation layer could not interpret what came back
// (type decoding, field descriptions, row materialization). Only this
// class of error is worth re-attempting with a different execution
// strategy; anything else (syntax errors, missing relations, permission
// errors) will fail identically no matter how the result is read.
var metadataSignatures = []string{
	"metadata",
	"not a sequence",
	"cannot scan",
	"unknown oid",
	"failed to decode",
	"field description",
	"unsupported data type",
	"number of field descriptions",
}

// MetadataErrorClassifier decides whether a query failure is a
// result-shape interpretation error that justifies the fallback ladder.
type MetadataErrorClassifier struct{}

// NewMetadataErrorClassifier creates a new classifier.
func NewMetadataErrorClassifier() *MetadataErrorClassifier {
	return &MetadataErrorClassifier{}
}

// IsMetadataError returns true if the error text matches a known
// metadata/result-shape interpretation signature.
func (c *MetadataErrorClassifier) IsMetadataError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, signature := range metadataSignatures {
		if strings.Contains(msg, signature) {
			return true
		}
	}

	return false
}
