package security

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/leifj/signedxml"
	dsig "github.com/russellhaering/goxmldsig"
	"github.com/russellhaering/goxmldsig/etreeutils"
)

// DefaultCanonicalizer returns the exclusive c14n implementation of goxmldsig
func DefaultCanonicalizer() dsig.Canonicalizer {
	return dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
}

// SignedXMLCanonicalizer runs exclusive c14n through the signedxml package
type SignedXMLCanonicalizer struct{}

// Canonicalize implements dsig.Canonicalizer
func (SignedXMLCanonicalizer) Canonicalize(el *etree.Element) ([]byte, error) {
	c14n := signedxml.ExclusiveCanonicalization{WithComments: false}
	out, err := c14n.ProcessElement(el, "")
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Algorithm implements dsig.Canonicalizer
func (SignedXMLCanonicalizer) Algorithm() dsig.AlgorithmID {
	return dsig.CanonicalXML10ExclusiveAlgorithmId
}

// canonicalize renders el in canonical form with the namespaces in scope at its
// position declared on it. The tree itself is left untouched.
func canonicalize(c dsig.Canonicalizer, el *etree.Element, exclude []int) ([]byte, error) {
	ctx, err := etreeutils.NSBuildParentContext(el)
	if err != nil {
		return nil, fmt.Errorf("namespace context of %s: %w", el.Tag, err)
	}
	detached, err := etreeutils.NSDetatch(ctx, el)
	if err != nil {
		return nil, fmt.Errorf("detach %s: %w", el.Tag, err)
	}
	if exclude != nil && !removeAtPath(detached, exclude) {
		return nil, fmt.Errorf("signature not found below %s", el.Tag)
	}
	out, err := c.Canonicalize(detached)
	if err != nil {
		return nil, fmt.Errorf("canonicalize %s: %w", el.Tag, err)
	}
	return out, nil
}

// pathTo returns the child indexes leading from tree down to el
func pathTo(tree, el *etree.Element) []int {
	var path []int
	for cur := el; cur != tree; cur = cur.Parent() {
		if cur == nil {
			return nil
		}
		path = append([]int{cur.Index()}, path...)
	}
	return path
}

func removeAtPath(el *etree.Element, path []int) bool {
	for i, idx := range path {
		if idx < 0 || idx >= len(el.Child) {
			return false
		}
		child, ok := el.Child[idx].(*etree.Element)
		if !ok {
			return false
		}
		if i == len(path)-1 {
			el.RemoveChildAt(idx)
			return true
		}
		el = child
	}
	return false
}
