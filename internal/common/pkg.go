package common

import "path"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// Qualify joins the alias of pkgPath and name with a dot, e.g. "zoo.Animal".
// An empty pkgPath leaves name unqualified.
func Qualify(pkgPath, name string) string {
	if alias := PkgAlias(pkgPath); alias != "" {
		return alias + "." + name
	}

	return name
}
