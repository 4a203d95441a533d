// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = ""
	Date    = ""

	UserAgent = fmt.Sprintf("ledflix/%s", Version)
)
