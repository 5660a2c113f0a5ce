//go:build !nocellml

package antimony

import _ "antimony/internal/codec/cellml"
