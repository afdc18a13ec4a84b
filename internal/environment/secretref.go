package environment

// SecretReference is a deterministic storage key for long-lived secret
// material. Two environments with the same method and identity material share
// the same reference; changing either produces a new reference and orphans
// the old one.
type SecretReference string

// SecretRef derives the storage key implied by the environment's
// configuration. The second return value is false when the method needs no
// stored secret (interactive and device-code flows).
func SecretRef(e *Environment) (SecretReference, bool) {
	if e == nil || !e.Method.RequiresSecret() {
		return "", false
	}
	material := e.identityMaterial()
	if material == "" {
		return "", false
	}
	return SecretReference(string(e.Method) + "/" + material), true
}

// DetectOrphanedSecrets compares a previous and a new configuration of the
// same environment and returns the secret references that are no longer
// referenced and should be deleted. next may be nil when the environment was
// deleted outright. The result is scoped strictly to keys derivable from
// prev; it never names keys belonging to other environments.
func DetectOrphanedSecrets(prev, next *Environment) []SecretReference {
	prevRef, prevHas := SecretRef(prev)
	if !prevHas {
		return nil
	}
	nextRef, nextHas := SecretRef(next)
	if nextHas && nextRef == prevRef {
		return nil
	}
	return []SecretReference{prevRef}
}
