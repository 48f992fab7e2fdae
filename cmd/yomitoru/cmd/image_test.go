package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageMIMEType(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "page.png", want: "image/png"},
		{path: "page.PNG", want: "image/png"},
		{path: "scan.jpg", want: "image/jpeg"},
		{path: "scan.jpeg", want: "image/jpeg"},
		{path: "dir/scan.JPG", want: "image/jpeg"},
		{path: "doc.gif", wantErr: true},
		{path: "doc.pdf", wantErr: true},
		{path: "noextension", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := imageMIMEType(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImageCommand_RequiresArgument(t *testing.T) {
	cmd, _, err := GetRootCommand().Find([]string{"image"})
	require.NoError(t, err)
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"page.png"}))
}
