package capability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "sbos/pkg/domain-errors"
)

// stubOracle answers selectors from a fixed table.
type stubOracle struct {
	results   map[string][]string
	instances map[string]string
	queries   []string
	err       error
}

func (o *stubOracle) Query(_ context.Context, selector string) ([]string, error) {
	o.queries = append(o.queries, selector)
	if o.err != nil {
		return nil, o.err
	}
	return o.results[selector], nil
}

func (o *stubOracle) IsInstanceOf(_ context.Context, label, semanticType string) (bool, error) {
	return o.instances[label] == semanticType, nil
}

type ResolverSuite struct {
	suite.Suite
	oracle   *stubOracle
	resolver *Resolver
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctx = context.Background()
	s.oracle = &stubOracle{
		results: map[string][]string{
			"class=*_Setpoint zone=F1_ZoneA": {"sp:a_cool", "sp:a_heat"},
			"floor=F1":                       {"sp:a_cool", "sp:a_heat", "sp:b_cool"},
			"label=*_Cool_SP":                {"sp:a_cool", "sp:b_cool"},
		},
		instances: map[string]string{"F1_ZoneA": "brick:HVAC_Zone"},
	}
	profiles := Profiles{Profiles: map[string]Profile{
		"zone_comfort": {
			Query: "class=*_Setpoint zone={{.zone}}",
			Args:  map[string]ArgSpec{"zone": {Type: "brick:HVAC_Zone"}},
		},
	}}
	users := Users{Users: map[string]UserGrant{
		"alice": {ReadQuery: "floor=F1", WriteQuery: "label=*_Cool_SP"},
		"bob":   {ReadQuery: "floor=F1"},
	}}
	var err error
	s.resolver, err = NewResolver(s.oracle, profiles, users)
	s.Require().NoError(err)
}

func (s *ResolverSuite) manifest(delegation Delegation, write bool, user string) Manifest {
	return Manifest{
		AppID:       "comfort",
		Profile:     "zone_comfort",
		Args:        map[string]string{"zone": "F1_ZoneA"},
		Delegation:  delegation,
		Permissions: Permissions{Write: write},
		User:        user,
	}
}

func (s *ResolverSuite) TestAugmented() {
	s.Run("write mirrors read when permitted", func() {
		set, err := s.resolver.Compute(s.ctx, s.manifest(Augmented, true, "bob"))
		s.Require().NoError(err)
		s.Equal([]string{"sp:a_cool", "sp:a_heat"}, set.Read())
		s.Equal([]string{"sp:a_cool", "sp:a_heat"}, set.Write())
	})

	s.Run("no write permission gives empty write set", func() {
		set, err := s.resolver.Compute(s.ctx, s.manifest(Augmented, false, "alice"))
		s.Require().NoError(err)
		s.Len(set.Read(), 2)
		s.Empty(set.Write())
	})

	s.Run("user grants are ignored", func() {
		withUser, err := s.resolver.Compute(s.ctx, s.manifest(Augmented, true, "alice"))
		s.Require().NoError(err)
		withoutUser, err := s.resolver.Compute(s.ctx, s.manifest(Augmented, true, "nobody"))
		s.Require().NoError(err)
		s.True(withUser.Equal(withoutUser))
	})
}

func (s *ResolverSuite) TestDelegated() {
	s.Run("intersects with user grants", func() {
		set, err := s.resolver.Compute(s.ctx, s.manifest(Delegated, true, "alice"))
		s.Require().NoError(err)
		s.Equal([]string{"sp:a_cool", "sp:a_heat"}, set.Read())
		s.Equal([]string{"sp:a_cool"}, set.Write())
		s.False(set.CanWrite("sp:a_heat"))
		s.False(set.CanWrite("sp:b_cool"), "user-only grant never leaks in")
	})

	s.Run("missing write query grants nothing", func() {
		set, err := s.resolver.Compute(s.ctx, s.manifest(Delegated, true, "bob"))
		s.Require().NoError(err)
		s.Len(set.Read(), 2)
		s.Empty(set.Write())
	})

	s.Run("unknown user has empty sets", func() {
		set, err := s.resolver.Compute(s.ctx, s.manifest(Delegated, true, "mallory"))
		s.Require().NoError(err)
		s.Empty(set.Read())
		s.Empty(set.Write())
	})

	s.Run("write subset of app write and user write", func() {
		for _, user := range []string{"alice", "bob", "mallory"} {
			set, err := s.resolver.Compute(s.ctx, s.manifest(Delegated, true, user))
			s.Require().NoError(err)
			for _, id := range set.Write() {
				s.Contains([]string{"sp:a_cool", "sp:a_heat"}, id)
				s.Contains([]string{"sp:a_cool", "sp:b_cool"}, id)
			}
		}
	})
}

func (s *ResolverSuite) TestManifestErrors() {
	s.Run("typed argument mismatch", func() {
		m := s.manifest(Augmented, true, "")
		m.Args["zone"] = "F1"
		_, err := s.resolver.Compute(s.ctx, m)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeManifestInvalid))
		s.Contains(err.Error(), "Typed argument check failed")
	})

	s.Run("unknown profile", func() {
		m := s.manifest(Augmented, true, "")
		m.Profile = "missing"
		_, err := s.resolver.Compute(s.ctx, m)
		s.True(dErrors.HasCode(err, dErrors.CodeManifestInvalid))
	})

	s.Run("missing template argument", func() {
		m := s.manifest(Augmented, true, "")
		m.Args = map[string]string{}
		_, err := s.resolver.Compute(s.ctx, m)
		s.True(dErrors.HasCode(err, dErrors.CodeManifestInvalid))
	})

	s.Run("oracle failure is internal", func() {
		s.oracle.err = errors.New("oracle unreachable")
		_, err := s.resolver.Compute(s.ctx, s.manifest(Augmented, true, ""))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.oracle.err = nil
	})
}

func (s *ResolverSuite) TestReplace() {
	s.resolver.Replace(Profiles{Profiles: map[string]Profile{
		"zone_comfort": {Query: "floor=F1"},
	}}, Users{})
	set, err := s.resolver.Compute(s.ctx, s.manifest(Augmented, false, ""))
	s.Require().NoError(err)
	s.Len(set.Read(), 3)
}

func TestParseDelegation(t *testing.T) {
	for in, want := range map[string]Delegation{
		"augmented":    Augmented,
		"augmentation": Augmented,
		"Delegated":    Delegated,
	} {
		got, err := ParseDelegation(in)
		if err != nil || got != want {
			t.Errorf("ParseDelegation(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDelegation("root"); !dErrors.HasCode(err, dErrors.CodeManifestInvalid) {
		t.Errorf("expected manifest_invalid, got %v", err)
	}
}

func TestManifestNormalize(t *testing.T) {
	m := &Manifest{AppID: "a", Profile: "p", Delegation: "augmentation"}
	if err := m.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if m.Delegation != Augmented || m.WriteLimit() != DefaultWriteRateLimit || m.Args == nil {
		t.Fatalf("unexpected normalized manifest: %+v", m)
	}

	zero := 0
	blocked := &Manifest{AppID: "a", Profile: "p", Delegation: "delegated", WriteRateLimitPerMin: &zero}
	if err := blocked.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if blocked.WriteLimit() != 0 {
		t.Fatalf("declared limit 0 became %d", blocked.WriteLimit())
	}

	var decoded Manifest
	if err := json.Unmarshal([]byte(`{"app_id":"a","profile":"p","delegation":"augmented","write_rate_limit_per_min":0}`), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := decoded.Normalize(); err != nil || decoded.WriteLimit() != 0 {
		t.Fatalf("decoded zero limit: err=%v limit=%d", err, decoded.WriteLimit())
	}

	negative := -1
	if err := (&Manifest{AppID: "a", Profile: "p", Delegation: "augmented", WriteRateLimitPerMin: &negative}).Normalize(); !dErrors.HasCode(err, dErrors.CodeManifestInvalid) {
		t.Fatalf("expected manifest_invalid for negative limit, got %v", err)
	}

	missing := &Manifest{Profile: "p", Delegation: "delegated"}
	if err := missing.Normalize(); !dErrors.HasCode(err, dErrors.CodeManifestInvalid) {
		t.Fatalf("expected manifest_invalid, got %v", err)
	}
}

func TestSetPoints(t *testing.T) {
	set := NewSet([]string{"b", "a", "b"}, []string{"c", "a"})
	if got := set.Points(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("Points() = %v", got)
	}
	revoked := set.WithoutWrite()
	if revoked.CanWrite("a") || !revoked.CanRead("a") {
		t.Fatal("WithoutWrite must clear only writes")
	}
}
