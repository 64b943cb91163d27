package domain

import "errors"

// ErrDimensionMismatch reports an embedding whose length does not match the
// collection's configured vector size. Ingestion treats it as fatal for the
// file: no partial vectors are upserted.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")
