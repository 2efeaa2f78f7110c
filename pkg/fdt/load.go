// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdt

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"github.com/u-root/u-root/pkg/dt"
)

// Load reads and parses a flattened devicetree blob from path. On Linux
// the firmware-provided tree is exposed at /sys/firmware/fdt.
func Load(path string) (*Tree, error) {
	return load(afero.NewOsFs(), path)
}

func load(fs afero.Fs, path string) (*Tree, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("Failed to read devicetree %s: %v", path, err)
	}
	f, err := dt.ReadFDT(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("Failed to parse devicetree %s: %v", path, err)
	}
	return New(f), nil
}
