//go:build !nosbml

package antimony

import _ "antimony/internal/codec/sbml"
