package release

import "fmt"

// TagName returns the git tag of a version.
func TagName(version string) string {
	return "v" + version
}

func hotfixCommitMessage(version string) string {
	return fmt.Sprintf("chore: bump version to %s", version)
}

func hotfixTagMessage(version string) string {
	return fmt.Sprintf("Hotfix release %s", TagName(version))
}

func releaseCommitMessage(version string) string {
	return fmt.Sprintf("Release version %s", version)
}

func releaseTagMessage(version string) string {
	return fmt.Sprintf("Release %s", version)
}

func releaseNotes(version, devBranch, mainBranch string) string {
	return fmt.Sprintf("Release %s, promoted from `%s` to `%s`.", version, devBranch, mainBranch)
}
