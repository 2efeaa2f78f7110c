// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdt

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
)

// dtb assembles a minimal flattened devicetree blob (version 17) so the
// loader can be exercised against the same format the firmware hands
// over at /sys/firmware/fdt.
type dtb struct {
	structs bytes.Buffer
	strs    bytes.Buffer
	offs    map[string]uint32
}

const (
	tokBeginNode = 1
	tokEndNode   = 2
	tokProp      = 3
	tokEnd       = 9
)

func newDtb() *dtb {
	return &dtb{offs: map[string]uint32{}}
}

func (d *dtb) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	d.structs.Write(b[:])
}

func (d *dtb) pad() {
	for d.structs.Len()%4 != 0 {
		d.structs.WriteByte(0)
	}
}

func (d *dtb) begin(name string) {
	d.u32(tokBeginNode)
	d.structs.WriteString(name)
	d.structs.WriteByte(0)
	d.pad()
}

func (d *dtb) end() {
	d.u32(tokEndNode)
}

func (d *dtb) prop(name string, value []byte) {
	off, ok := d.offs[name]
	if !ok {
		off = uint32(d.strs.Len())
		d.offs[name] = off
		d.strs.WriteString(name)
		d.strs.WriteByte(0)
	}
	d.u32(tokProp)
	d.u32(uint32(len(value)))
	d.u32(off)
	d.structs.Write(value)
	d.pad()
}

func (d *dtb) blob() []byte {
	d.u32(tokEnd)
	st := d.structs.Bytes()
	sr := d.strs.Bytes()

	// Header, one empty reserve entry as terminator, structure block,
	// strings block.
	hdr := []uint32{
		0xd00dfeed,
		uint32(40 + 16 + len(st) + len(sr)),
		uint32(40 + 16),
		uint32(40 + 16 + len(st)),
		40,
		17,
		16,
		0,
		uint32(len(sr)),
		uint32(len(st)),
	}
	var out bytes.Buffer
	for _, v := range hdr {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		out.Write(b[:])
	}
	out.Write(make([]byte, 16))
	out.Write(st)
	out.Write(sr)
	return out.Bytes()
}

func testBlob() []byte {
	d := newDtb()
	d.begin("")
	d.begin("cpus")
	d.begin("cpu@0")
	d.prop("device_type", str("cpu"))
	d.prop("reg", cells(0))
	d.prop("qcom,acc", cells(1))
	d.end()
	d.end()
	d.begin("soc")
	d.begin("power-manager@b088000")
	d.prop("phandle", cells(1))
	d.prop("reg", cells(0xb088000, 0x1000))
	d.end()
	d.end()
	d.end()
	return d.blob()
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/boot.dtb", testBlob(), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tree, err := load(fs, "/boot.dtb")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cpus, ok := tree.Cpus()
	if !ok || len(cpus) != 1 {
		t.Fatalf("got %d CPU nodes, want 1", len(cpus))
	}
	acc, ok := tree.RegAddr(cpus[0], "qcom,acc", 0)
	if !ok || acc != 0xb088000 {
		t.Errorf("qcom,acc resolved to %#x ok=%v, want 0xb088000", acc, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := load(fs, "/no-such.dtb"); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestLoadGarbage(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/bad.dtb", []byte("not a dtb"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := load(fs, "/bad.dtb"); err == nil {
		t.Errorf("expected error for malformed blob")
	}
}
