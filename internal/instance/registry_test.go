package instance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sbos/internal/capability"
	"sbos/internal/instance"
	"sbos/internal/instance/mocks"
	dErrors "sbos/pkg/domain-errors"
	"sbos/pkg/requestcontext"
)

type RegistrySuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	resolver  *mocks.MockResolver
	lifecycle *mocks.MockLifecycle
	buckets   *mocks.MockBuckets
	registry  *instance.Registry
	ctx       context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mocks.NewMockResolver(s.ctrl)
	s.lifecycle = mocks.NewMockLifecycle(s.ctrl)
	s.buckets = mocks.NewMockBuckets(s.ctrl)
	var err error
	s.registry, err = instance.New(s.resolver, s.lifecycle,
		instance.WithBuckets(s.buckets),
		instance.WithBaseURL("http://sbos:8083"),
		instance.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.ctx = requestcontext.WithTime(context.Background(), time.UnixMilli(1_700_000_000_123))
}

func (s *RegistrySuite) TearDownTest() {
	s.ctrl.Finish()
}

func manifest() capability.Manifest {
	return capability.Manifest{
		AppID:       "comfort",
		Profile:     "zone_comfort",
		Args:        map[string]string{"zone": "F1_ZoneA"},
		Delegation:  "augmentation",
		Permissions: capability.Permissions{Write: true},
		User:        "alice",
	}
}

func (s *RegistrySuite) register() *instance.Instance {
	s.resolver.EXPECT().Compute(gomock.Any(), gomock.Any()).
		Return(capability.NewSet([]string{"sp:a"}, []string{"sp:a"}), nil)
	s.lifecycle.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any(), "http://sbos:8083").
		Return(instance.Handle{PID: 4242}, nil)
	inst, err := s.registry.Register(s.ctx, manifest())
	s.Require().NoError(err)
	return inst
}

func (s *RegistrySuite) TestNew() {
	s.Run("nil resolver returns error", func() {
		_, err := instance.New(nil, s.lifecycle)
		s.ErrorContains(err, "resolver is required")
	})
	s.Run("nil lifecycle returns error", func() {
		_, err := instance.New(s.resolver, nil)
		s.ErrorContains(err, "lifecycle manager is required")
	})
}

func (s *RegistrySuite) TestRegister() {
	s.Run("assigns id, key and capabilities", func() {
		inst := s.register()
		s.Equal("comfort-1700000000123", inst.ID)
		s.True(strings.HasPrefix(inst.Key, "key_"))
		s.Equal(capability.Augmented, inst.Manifest.Delegation)
		s.Equal(capability.DefaultWriteRateLimit, inst.Manifest.WriteLimit())
		s.True(inst.Caps().CanWrite("sp:a"))
		s.Equal(4242, inst.Handle().PID)

		got, err := s.registry.Authenticate(inst.Key)
		s.Require().NoError(err)
		s.Same(inst, got)
	})

	s.Run("same millisecond gets a distinct id", func() {
		second := s.register()
		s.Equal("comfort-1700000000124", second.ID)
	})

	s.Run("manifest errors surface unchanged", func() {
		s.resolver.EXPECT().Compute(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeManifestInvalid, "Typed argument check failed"))
		_, err := s.registry.Register(s.ctx, manifest())
		s.True(dErrors.HasCode(err, dErrors.CodeManifestInvalid))
	})

	s.Run("invalid delegation rejected before resolve", func() {
		m := manifest()
		m.Delegation = "sudo"
		_, err := s.registry.Register(s.ctx, m)
		s.True(dErrors.HasCode(err, dErrors.CodeManifestInvalid))
	})

	s.Run("start failure leaves no instance behind", func() {
		before := len(s.registry.List())
		s.resolver.EXPECT().Compute(gomock.Any(), gomock.Any()).Return(capability.NewSet(nil, nil), nil)
		s.lifecycle.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(instance.Handle{}, errors.New("exec: not found"))
		_, err := s.registry.Register(s.ctx, manifest())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Len(s.registry.List(), before)
	})
}

func (s *RegistrySuite) TestAuthenticate() {
	_, err := s.registry.Authenticate("")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.registry.Authenticate("key_unknown")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *RegistrySuite) TestStop() {
	inst := s.register()

	s.lifecycle.EXPECT().Stop(gomock.Any(), instance.Handle{PID: 4242}).Return(errors.New("no such process"))
	s.buckets.EXPECT().Forget(gomock.Any(), inst.ID).Return(nil)
	s.registry.Stop(s.ctx, inst.ID)

	_, ok := s.registry.Get(inst.ID)
	s.False(ok)
	_, err := s.registry.Authenticate(inst.Key)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "key is gone with the instance")

	s.registry.Stop(s.ctx, inst.ID)
}

func (s *RegistrySuite) TestStopDuringStart() {
	s.resolver.EXPECT().Compute(gomock.Any(), gomock.Any()).
		Return(capability.NewSet([]string{"sp:a"}, []string{"sp:a"}), nil)
	var stoppedDuringStart int
	s.lifecycle.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id, key, _ string) (instance.Handle, error) {
			stoppedDuringStart = s.registry.StopAll(ctx)
			_, err := s.registry.Authenticate(key)
			s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "a stopped instance's key is revoked at once")
			return instance.Handle{PID: 4242}, nil
		})
	s.lifecycle.EXPECT().Stop(gomock.Any(), instance.Handle{PID: 4242}).Return(nil)
	s.buckets.EXPECT().Forget(gomock.Any(), gomock.Any()).Return(nil)

	inst, err := s.registry.Register(s.ctx, manifest())

	s.Equal(1, stoppedDuringStart)
	s.Nil(inst)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Empty(s.registry.List())
}

func (s *RegistrySuite) TestReload() {
	inst := s.register()
	key := inst.Key

	s.Run("recomputes without changing identity", func() {
		s.resolver.EXPECT().Compute(gomock.Any(), inst.Manifest).
			Return(capability.NewSet([]string{"sp:a", "sp:b"}, nil), nil)
		s.Require().NoError(s.registry.Reload(s.ctx))
		s.Equal(key, inst.Key)
		s.True(inst.Caps().CanRead("sp:b"))
		s.False(inst.Caps().CanWrite("sp:a"))
	})

	s.Run("failure applies nothing", func() {
		s.resolver.EXPECT().Compute(gomock.Any(), gomock.Any()).Return(nil, errors.New("oracle down"))
		s.Error(s.registry.Reload(s.ctx))
		s.True(inst.Caps().CanRead("sp:b"))
	})
}

func (s *RegistrySuite) TestRemediationHelpers() {
	a := s.register()
	b := s.register()

	s.Equal(2, s.registry.RevokeAllWrites(s.ctx))
	s.False(a.Caps().CanWrite("sp:a"))
	s.True(a.Caps().CanRead("sp:a"))
	s.False(b.Caps().CanWrite("sp:a"))

	s.lifecycle.EXPECT().Stop(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.buckets.EXPECT().Forget(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.Equal(2, s.registry.StopAll(s.ctx))
	s.Empty(s.registry.List())
}

func TestGenerateKeyIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		k, err := instance.GenerateKey()
		if err != nil {
			t.Fatal(err)
		}
		if seen[k] {
			t.Fatalf("duplicate key %s", k)
		}
		seen[k] = true
	}
}
