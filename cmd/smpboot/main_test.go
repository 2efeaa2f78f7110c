// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"
	"testing"
)

func TestCheckFlags(t *testing.T) {
	if err := checkFlags(0x8f600000, 0x100); err != nil {
		t.Errorf("Valid flags rejected: %v", err)
	}
	if err := checkFlags(math.MaxUint32, 0); err != nil {
		t.Errorf("Widest expressible entry address rejected: %v", err)
	}
	if err := checkFlags(0, 0); err == nil {
		t.Errorf("Missing entry address accepted")
	}
	if err := checkFlags(1<<32, 0); err == nil {
		t.Errorf("Entry address wider than 32 bits accepted")
	}
	if err := checkFlags(0x8f600000, 1<<32); err == nil {
		t.Errorf("MPIDR wider than 32 bits accepted")
	}
}
