// Copyright (C) 2024 vrc-get contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package project

import (
	"fmt"

	"github.com/lonelyicer/vrc-get/pkg/version"
)

// DependencyNotFoundError is returned when no candidate in the package
// collection satisfies the required range for a dependency. This is
// the only resolution error that is recoverable at the call site; the
// user is expected to add a repository or change their requirements.
type DependencyNotFoundError struct {
	DependencyName string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("package %s (maybe dependencies of the package) not found", e.DependencyName)
}

// UpgradingNonLockedPackageError is returned when the caller asks to
// upgrade a package that is not in the lock file.
type UpgradingNonLockedPackageError struct {
	PackageName string
}

func (e *UpgradingNonLockedPackageError) Error() string {
	return fmt.Sprintf("upgrading %s but the package is not locked", e.PackageName)
}

// DowngradingNonLockedPackageError is returned when the caller asks to
// downgrade a package that is not in the lock file.
type DowngradingNonLockedPackageError struct {
	PackageName string
}

func (e *DowngradingNonLockedPackageError) Error() string {
	return fmt.Sprintf("downgrading %s but the package is not locked", e.PackageName)
}

// UpgradingWithDowngradeError is returned when the caller passes a
// version lower than the locked one without opting into downgrades.
type UpgradingWithDowngradeError struct {
	PackageName string
	From        *version.Version
	To          *version.Version
}

func (e *UpgradingWithDowngradeError) Error() string {
	return fmt.Sprintf("upgrading %s from %s to %s is a downgrade", e.PackageName, e.From, e.To)
}
