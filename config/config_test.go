// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/pevik/lk2nd/pkg/qcom"
)

func TestDefaultMethod(t *testing.T) {
	if _, err := qcom.For(DefaultConfig.Smp.Method, nil, nil); err != nil {
		t.Fatalf("Default boot method is not usable: %v", err)
	}
}

func TestNoDefaultEntry(t *testing.T) {
	// The entry address must always come from the caller.
	if DefaultConfig.Smp.EntryAddr != 0 {
		t.Fatalf("A compiled in entry address %#x would boot cores into stale code",
			DefaultConfig.Smp.EntryAddr)
	}
}
