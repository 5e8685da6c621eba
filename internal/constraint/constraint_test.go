package constraint

import (
	"strings"
	"testing"

	"github.com/ksyq12/vhostfrag/internal/errors"
)

func proxyGroups(pass, match, dest Presence) []Group {
	return []Group{
		{Name: "proxy_pass", Presence: pass},
		{Name: "proxy_match", Presence: match},
		{Name: "proxy_dest", Presence: dest},
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		groups  []Group
		policy  Policy
		wantErr *errors.VHostError
	}{
		{name: "all unset", groups: proxyGroups(Unset, Unset, Unset), policy: PolicyCombine, wantErr: errors.ErrMissingGroup},
		{name: "explicitly empty", groups: proxyGroups(Empty, Unset, Unset), policy: PolicyCombine, wantErr: errors.ErrMissingGroup},
		{name: "all empty", groups: proxyGroups(Empty, Empty, Empty), policy: PolicyExclusive, wantErr: errors.ErrMissingGroup},
		{name: "one provided", groups: proxyGroups(Provided, Unset, Unset), policy: PolicyCombine},
		{name: "two provided combine", groups: proxyGroups(Provided, Empty, Provided), policy: PolicyCombine},
		{name: "one provided exclusive", groups: proxyGroups(Unset, Provided, Empty), policy: PolicyExclusive},
		{name: "two provided exclusive", groups: proxyGroups(Provided, Provided, Unset), policy: PolicyExclusive, wantErr: errors.ErrConflictingGroups},
		{name: "no groups", groups: nil, policy: PolicyCombine, wantErr: errors.ErrMissingGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check("myproxy", tt.groups, tt.policy)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %s, got %v", tt.wantErr.Code, err)
			}
		})
	}
}

func TestCheckMessageListsCheckedGroups(t *testing.T) {
	err := Check("myproxy", proxyGroups(Empty, Unset, Unset), PolicyCombine)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "At least one of proxy_pass, proxy_match, proxy_dest must be set") {
		t.Errorf("unexpected message: %q", err.Error())
	}

	var vhostErr *errors.VHostError
	if !errors.As(err, &vhostErr) {
		t.Fatal("expected *VHostError")
	}
	if vhostErr.Source != "myproxy" {
		t.Errorf("Source = %q, want myproxy", vhostErr.Source)
	}
}

func TestCheckConflictNamesProvidedGroups(t *testing.T) {
	err := Check("p", proxyGroups(Provided, Empty, Provided), PolicyExclusive)

	var vhostErr *errors.VHostError
	if !errors.As(err, &vhostErr) {
		t.Fatalf("expected *VHostError, got %v", err)
	}
	if strings.Join(vhostErr.Groups, ",") != "proxy_pass,proxy_dest" {
		t.Errorf("Groups = %v", vhostErr.Groups)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyCombine, false},
		{"combine", PolicyCombine, false},
		{"exclusive", PolicyExclusive, false},
		{"strict", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPresenceString(t *testing.T) {
	if Unset.String() != "unset" || Empty.String() != "empty" || Provided.String() != "provided" {
		t.Error("unexpected presence names")
	}
	if Presence(9).String() != "unknown" {
		t.Error("expected unknown")
	}
}
