// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "fmt"

// DecodeError is returned by Decode for malformed input. It is always
// fatal to the connection the bytes were read from; partial/incomplete
// frames are signaled by a nil error and n == 0, not by DecodeError.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return e.Reason }

func errInvalidByte(b byte) error {
	return &DecodeError{Reason: fmt.Sprintf("wire: invalid leading byte %q", b)}
}

func errInvalidSize(n int64) error {
	return &DecodeError{Reason: fmt.Sprintf("wire: invalid declared size %d", n)}
}

var errNumberParse = &DecodeError{Reason: "wire: could not parse integer"}
