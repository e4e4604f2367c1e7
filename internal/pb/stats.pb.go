// Package pb defines the binary encoding of a corpus diff's summary
// statistics, mirroring diff.Stats one-for-one for callers that want a
// machine-readable outcome instead of parsing the text report
// (SPEC_FULL.md §6). It follows the teacher's leaves/shotness.go
// convention of a hand-authored gogo/protobuf message rather than
// generating code from a .proto file, since there is exactly one message
// here and no wire compatibility with another service to maintain.
package pb

import (
	"fmt"
	"io"

	"github.com/gogo/protobuf/proto"

	"github.com/abigraph/abidiff/internal/diff"
)

// CorpusDiffStats is the protobuf message for diff.Stats plus the two
// corpus-level booleans a caller needs without walking the graph
// (has-changes, has-incompatible-changes).
type CorpusDiffStats struct {
	NumFuncRemoved             int32 `protobuf:"varint,1,opt,name=num_func_removed"`
	NumFuncAdded               int32 `protobuf:"varint,2,opt,name=num_func_added"`
	NumFuncChanged             int32 `protobuf:"varint,3,opt,name=num_func_changed"`
	NumRemovedFuncFilteredOut  int32 `protobuf:"varint,4,opt,name=num_removed_func_filtered_out"`
	NumAddedFuncFilteredOut    int32 `protobuf:"varint,5,opt,name=num_added_func_filtered_out"`
	NumChangedFuncFilteredOut  int32 `protobuf:"varint,6,opt,name=num_changed_func_filtered_out"`
	NumVarRemoved              int32 `protobuf:"varint,7,opt,name=num_var_removed"`
	NumVarAdded                int32 `protobuf:"varint,8,opt,name=num_var_added"`
	NumVarChanged              int32 `protobuf:"varint,9,opt,name=num_var_changed"`
	NumRemovedVarFilteredOut   int32 `protobuf:"varint,10,opt,name=num_removed_var_filtered_out"`
	NumAddedVarFilteredOut     int32 `protobuf:"varint,11,opt,name=num_added_var_filtered_out"`
	NumChangedVarFilteredOut   int32 `protobuf:"varint,12,opt,name=num_changed_var_filtered_out"`
	NumFuncSymsUnreferenced    int32 `protobuf:"varint,13,opt,name=num_func_syms_unreferenced"`
	NumVarSymsUnreferenced     int32 `protobuf:"varint,14,opt,name=num_var_syms_unreferenced"`
	HasChanges                 bool  `protobuf:"varint,15,opt,name=has_changes"`
	HasIncompatibleChanges     bool  `protobuf:"varint,16,opt,name=has_incompatible_changes"`
}

func (m *CorpusDiffStats) Reset()         { *m = CorpusDiffStats{} }
func (m *CorpusDiffStats) String() string { return fmt.Sprintf("%+v", *m) }
func (*CorpusDiffStats) ProtoMessage()    {}

// FromStats builds a CorpusDiffStats from a computed diff.Stats and the
// corpus-diff's own incompatibility predicate.
func FromStats(s diff.Stats, hasChanges, hasIncompatibleChanges bool) *CorpusDiffStats {
	return &CorpusDiffStats{
		NumFuncRemoved:            int32(s.NumFuncRemoved),
		NumFuncAdded:              int32(s.NumFuncAdded),
		NumFuncChanged:            int32(s.NumFuncChanged),
		NumRemovedFuncFilteredOut: int32(s.NumRemovedFuncFilteredOut),
		NumAddedFuncFilteredOut:   int32(s.NumAddedFuncFilteredOut),
		NumChangedFuncFilteredOut: int32(s.NumChangedFuncFilteredOut),
		NumVarRemoved:             int32(s.NumVarRemoved),
		NumVarAdded:               int32(s.NumVarAdded),
		NumVarChanged:             int32(s.NumVarChanged),
		NumRemovedVarFilteredOut:  int32(s.NumRemovedVarFilteredOut),
		NumAddedVarFilteredOut:    int32(s.NumAddedVarFilteredOut),
		NumChangedVarFilteredOut:  int32(s.NumChangedVarFilteredOut),
		NumFuncSymsUnreferenced:   int32(s.NumFuncSymsUnreferenced),
		NumVarSymsUnreferenced:    int32(s.NumVarSymsUnreferenced),
		HasChanges:                hasChanges,
		HasIncompatibleChanges:    hasIncompatibleChanges,
	}
}

// Marshal writes m's binary encoding to w.
func Marshal(w io.Writer, m *CorpusDiffStats) error {
	buf, err := proto.Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Unmarshal reads a binary-encoded CorpusDiffStats from buf.
func Unmarshal(buf []byte) (*CorpusDiffStats, error) {
	m := &CorpusDiffStats{}
	if err := proto.Unmarshal(buf, m); err != nil {
		return nil, err
	}
	return m, nil
}
