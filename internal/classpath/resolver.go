package classpath

// ArchiveResolver maps a resource location to the location of the archive
// that contains it. ok is false when the resource is not archive-backed; err
// is reserved for I/O faults during resolution.
type ArchiveResolver interface {
	ContainingArchive(resource Locator) (archive Locator, ok bool, err error)
}

// ArchiveResolverFunc adapts a function to ArchiveResolver.
type ArchiveResolverFunc func(resource Locator) (Locator, bool, error)

// ContainingArchive calls f(resource).
func (f ArchiveResolverFunc) ContainingArchive(resource Locator) (Locator, bool, error) {
	return f(resource)
}

// JarResolver resolves jar: URLs to their outer archive URL:
//
//	jar:file:/path/to.jar!/pkg/Cls.class -> file:/path/to.jar
//
// Any other scheme is not archive-backed. A jar: URL without a valid archive
// location fails, as opening its connection would.
type JarResolver struct{}

// ContainingArchive implements ArchiveResolver.
func (JarResolver) ContainingArchive(resource Locator) (Locator, bool, error) {
	if resource.Scheme() != schemeJar {
		return Locator{}, false, nil
	}
	inner, _, err := splitJar(resource.u)
	if err != nil {
		return Locator{}, false, err
	}
	return newLocator(inner), true, nil
}
