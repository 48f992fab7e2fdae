package pipeline

import (
	"encoding/base64"
	"fmt"
)

// encodeImagePayload builds the data URI returned in place of a rendered
// overlay. Overlay rendering is not implemented; both modes return the
// original upload unmodified.
func encodeImagePayload(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
