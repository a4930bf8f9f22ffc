// Package linker places individual mod files into the game directory.
package linker

// Linker deploys and undeploys single mod files
type Linker interface {
	Deploy(src, dst string) error
	Undeploy(dst string) error
	IsDeployed(dst string) (bool, error)
}
