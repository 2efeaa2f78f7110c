// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

// Overridden by the release build with
// -ldflags "-X .../config.gitVersion=... -X .../config.gitHash=...".
var (
	gitVersion = "dev"
	gitHash    = "unknown"
)
