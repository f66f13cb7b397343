package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMembers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eu_members.json")
	blob := `{
  // only eu_member rows count
  "members": [
    {"noc": "AUT", "eu_member": true},
    {"noc": "NOR", "eu_member": false},
    {"noc": " FRA ", "eu_member": true},
    {"noc": "", "eu_member": true},
  ],
}`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	members, err := LoadMembers(path)
	require.NoError(t, err)
	require.Equal(t, []string{"AUT", "FRA"}, members)
}

func TestLoadMembersMissingFile(t *testing.T) {
	members, err := LoadMembers(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestLoadMembersMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eu_members.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"members": [`), 0o644))

	_, err := LoadMembers(path)
	require.Error(t, err)
}
