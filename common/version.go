// Copyright 2023-2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import "fmt"

var (
	// commitHash contains the current Git revision; set by mage at
	// build time
	commitHash string

	// buildDate contains the date of the current build; set by mage
	buildDate string
)

// Version represents a SemVer 2.0.0 compatible build version
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

// CurrentVersion of the nav-api build
var CurrentVersion = Version{
	Major: 0,
	Minor: 3,
	Patch: 0,
}

func (v Version) String() string {
	version := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix != "" {
		version = fmt.Sprintf("%s-%s", version, v.Suffix)
	}
	if commitHash != "" {
		version = fmt.Sprintf("%s+%s", version, commitHash)
	}
	return version
}

// BuildDate returns the date this binary was built, when known
func BuildDate() string {
	return buildDate
}

// CommitHash returns the Git revision this binary was built from, when known
func CommitHash() string {
	return commitHash
}
