package environment

import (
	"testing"
)

func TestAuthenticationMethodPredicates(t *testing.T) {
	tests := []struct {
		method            AuthenticationMethod
		valid             bool
		clientCredentials bool
		usernamePassword  bool
		interactive       bool
		secret            bool
	}{
		{MethodInteractive, true, false, false, true, false},
		{MethodDeviceCode, true, false, false, true, false},
		{MethodServicePrincipal, true, true, false, false, true},
		{MethodUsernamePassword, true, false, true, false, true},
		{AuthenticationMethod("certificate"), false, false, false, false, false},
		{AuthenticationMethod(""), false, false, false, false, false},
	}

	for _, test := range tests {
		t.Run(string(test.method), func(t *testing.T) {
			if got := test.method.Valid(); got != test.valid {
				t.Errorf("Valid() = %v, want %v", got, test.valid)
			}
			if got := test.method.RequiresClientCredentials(); got != test.clientCredentials {
				t.Errorf("RequiresClientCredentials() = %v, want %v", got, test.clientCredentials)
			}
			if got := test.method.RequiresUsernamePassword(); got != test.usernamePassword {
				t.Errorf("RequiresUsernamePassword() = %v, want %v", got, test.usernamePassword)
			}
			if got := test.method.IsInteractiveFlow(); got != test.interactive {
				t.Errorf("IsInteractiveFlow() = %v, want %v", got, test.interactive)
			}
			if got := test.method.RequiresSecret(); got != test.secret {
				t.Errorf("RequiresSecret() = %v, want %v", got, test.secret)
			}
		})
	}
}

func TestSecretRef(t *testing.T) {
	tests := []struct {
		name    string
		env     *Environment
		wantRef SecretReference
		wantOK  bool
	}{
		{
			name:    "service principal keyed by client id",
			env:     &Environment{ID: "a", Method: MethodServicePrincipal, ClientID: "c1"},
			wantRef: "service_principal/c1",
			wantOK:  true,
		},
		{
			name:    "username password keyed by username",
			env:     &Environment{ID: "a", Method: MethodUsernamePassword, ClientID: "c1", Username: "alice"},
			wantRef: "username_password/alice",
			wantOK:  true,
		},
		{
			name:   "interactive needs no secret",
			env:    &Environment{ID: "a", Method: MethodInteractive, ClientID: "c1"},
			wantOK: false,
		},
		{
			name:   "device code needs no secret",
			env:    &Environment{ID: "a", Method: MethodDeviceCode, ClientID: "c1"},
			wantOK: false,
		},
		{
			name:   "service principal without client id derives nothing",
			env:    &Environment{ID: "a", Method: MethodServicePrincipal},
			wantOK: false,
		},
		{
			name:   "nil environment",
			env:    nil,
			wantOK: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ref, ok := SecretRef(test.env)
			if ok != test.wantOK {
				t.Fatalf("SecretRef() ok = %v, want %v", ok, test.wantOK)
			}
			if ok && ref != test.wantRef {
				t.Errorf("SecretRef() = %q, want %q", ref, test.wantRef)
			}
		})
	}
}

func TestSecretRefSharedBetweenIdenticalMaterial(t *testing.T) {
	a := &Environment{ID: "a", Method: MethodServicePrincipal, TenantID: "t1", ClientID: "c1"}
	b := &Environment{ID: "b", Method: MethodServicePrincipal, TenantID: "t2", ClientID: "c1"}

	refA, _ := SecretRef(a)
	refB, _ := SecretRef(b)
	if refA != refB {
		t.Errorf("environments with identical method+identity material should share a key: %q != %q", refA, refB)
	}
}

func TestDetectOrphanedSecrets(t *testing.T) {
	sp := &Environment{ID: "a", Method: MethodServicePrincipal, TenantID: "t", ClientID: "c1"}

	tests := []struct {
		name string
		prev *Environment
		next *Environment
		want []SecretReference
	}{
		{
			name: "unchanged configuration orphans nothing",
			prev: sp,
			next: &Environment{ID: "a", Method: MethodServicePrincipal, TenantID: "t", ClientID: "c1"},
			want: nil,
		},
		{
			name: "switch to interactive orphans the previous secret",
			prev: sp,
			next: &Environment{ID: "a", Method: MethodInteractive, TenantID: "t", ClientID: "c1"},
			want: []SecretReference{"service_principal/c1"},
		},
		{
			name: "client id change orphans the previous secret",
			prev: sp,
			next: &Environment{ID: "a", Method: MethodServicePrincipal, TenantID: "t", ClientID: "c2"},
			want: []SecretReference{"service_principal/c1"},
		},
		{
			name: "method change with same material orphans the previous secret",
			prev: &Environment{ID: "a", Method: MethodUsernamePassword, TenantID: "t", ClientID: "c1", Username: "alice"},
			next: &Environment{ID: "a", Method: MethodServicePrincipal, TenantID: "t", ClientID: "alice"},
			want: []SecretReference{"username_password/alice"},
		},
		{
			name: "environment deletion orphans the previous secret",
			prev: sp,
			next: nil,
			want: []SecretReference{"service_principal/c1"},
		},
		{
			name: "previous interactive configuration orphans nothing",
			prev: &Environment{ID: "a", Method: MethodInteractive, TenantID: "t", ClientID: "c1"},
			next: sp,
			want: nil,
		},
		{
			name: "nothing before, nothing orphaned",
			prev: nil,
			next: sp,
			want: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := DetectOrphanedSecrets(test.prev, test.next)
			if len(got) != len(test.want) {
				t.Fatalf("DetectOrphanedSecrets() = %v, want %v", got, test.want)
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Errorf("DetectOrphanedSecrets()[%d] = %q, want %q", i, got[i], test.want[i])
				}
			}
		})
	}
}
