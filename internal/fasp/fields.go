package fasp

// FieldKind is the value type a canonical field is coerced to.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindBool
)

func (k FieldKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// fieldKinds maps canonical (normalized) field names to their coerced type.
// Names absent from the table stay strings.
var fieldKinds = map[string]FieldKind{
	// integers
	"arg_scans_attempted":    KindInt,
	"arg_scans_completed":    KindInt,
	"bytes_cont":             KindInt,
	"cluster_node_id":        KindInt,
	"cluster_num_nodes":      KindInt,
	"code":                   KindInt,
	"create_policy":          KindInt,
	"datagram_size":          KindInt,
	"delay":                  KindInt,
	"ds_pipeline_depth":      KindInt,
	"elapsed_usec":           KindInt,
	"fasp_file_arg_index":    KindInt,
	"file_bytes":             KindInt,
	"file_scans_completed":   KindInt,
	"loss":                   KindInt,
	"min_rate":               KindInt,
	"min_rate_cap":           KindInt,
	"path_scans_attempted":   KindInt,
	"peer_ds_pipeline_depth": KindInt,
	"peer_v_link_version":    KindInt,
	"pmtu":                   KindInt,
	"port":                   KindInt,
	"pre_transfer_bytes":     KindInt,
	"pre_transfer_dirs":      KindInt,
	"pre_transfer_files":     KindInt,
	"priority":               KindInt,
	"rate":                   KindInt,
	"rate_cap":               KindInt,
	"read_block_size":        KindInt,
	"size":                   KindInt,
	"start_byte":             KindInt,
	"tcp_port":               KindInt,
	"time_policy":            KindInt,
	"transfer_bytes":         KindInt,
	"transfers_attempted":    KindInt,
	"transfers_passed":       KindInt,
	"v_link_version":         KindInt,
	"write_block_size":       KindInt,
	"written":                KindInt,
	"xopt_flags":             KindInt,

	// booleans, "Yes" is true
	"encryption":            KindBool,
	"files_decrypt":         KindBool,
	"files_encrypt":         KindBool,
	"keepalive":             KindBool,
	"min_rate_lock":         KindBool,
	"move_range":            KindBool,
	"policy_lock":           KindBool,
	"precalc":               KindBool,
	"rate_lock":             KindBool,
	"remote":                KindBool,
	"rtt_autocorrect":       KindBool,
	"test_login":            KindBool,
	"use_proxy":             KindBool,
	"v_link_local_enabled":  KindBool,
	"v_link_remote_enabled": KindBool,
}

// KindOf returns the coercion applied to a canonical field name.
func KindOf(canonical string) FieldKind { return fieldKinds[canonical] }

// splitSuffixes are trailing abbreviations that get their own word even
// without a case transition ("Elapsedusec" -> "elapsed_usec").
var splitSuffixes = []string{"usec", "cont"}
