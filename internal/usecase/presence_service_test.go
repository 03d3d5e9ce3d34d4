package usecase_test

import (
	"math"
	"testing"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/Srikarsmile/HRUPDATED/internal/locationtoken"
	"github.com/Srikarsmile/HRUPDATED/internal/logging"
	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
)

func TestCheckNetwork(t *testing.T) {
	allow, _ := usecase.ParseAllowlist("10.0.0.0/24,192.168.1.10")
	s := usecase.NewPresenceService(allow, nil, nil, 0, logging.Discard())

	res := s.CheckNetwork("10.0.0.3")
	if !res.Allowed || res.IP != "10.0.0.3" || res.AllowlistSize != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if s.CheckNetwork("8.8.8.8").Allowed {
		t.Error("expected outside address to be denied")
	}
}

func TestCheckLocation(t *testing.T) {
	signer := locationtoken.New("geo-secret", locationtoken.WithClock(clock(testNow)))
	s := usecase.NewPresenceService(usecase.Allowlist{}, officeFence(), signer, time.Minute, logging.Discard())
	id := employee("10.0.0.1")

	t.Run("without coordinates", func(t *testing.T) {
		res, err := s.CheckLocation(id, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Configured || res.Allowed != nil || res.Center == nil || res.Center.RadiusMeters != 150 {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("inside", func(t *testing.T) {
		res, err := s.CheckLocation(id, ptr(north(officeLat, 50)), ptr(officeLng))
		if err != nil {
			t.Fatal(err)
		}
		if res.Allowed == nil || !*res.Allowed {
			t.Fatalf("expected allowed, got %+v", res)
		}
		if res.NearestDistance == nil || math.Abs(*res.NearestDistance-50) > 0.1 {
			t.Errorf("unexpected distance %v", res.NearestDistance)
		}
		if res.MatchedRadius == nil || *res.MatchedRadius != 150 {
			t.Errorf("unexpected matched radius %v", res.MatchedRadius)
		}

		proof, err := signer.Verify(res.ProofToken)
		if err != nil {
			t.Fatalf("issued token does not verify: %v", err)
		}
		if proof.Subject != id.ID {
			t.Errorf("expected token bound to %s, got %s", id.ID, proof.Subject)
		}
	})

	t.Run("outside", func(t *testing.T) {
		res, err := s.CheckLocation(id, ptr(north(officeLat, 400)), ptr(officeLng))
		if err != nil {
			t.Fatal(err)
		}
		if res.Allowed == nil || *res.Allowed {
			t.Fatalf("expected denied, got %+v", res)
		}
		if res.ProofToken != "" || res.MatchedRadius != nil {
			t.Errorf("denied check must not carry a token: %+v", res)
		}
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		_, err := s.CheckLocation(id, ptr(math.NaN()), ptr(officeLng))
		assertKind(t, err, usecase.InvalidInput)
	})
}

func TestCheckLocation_NotConfigured(t *testing.T) {
	s := usecase.NewPresenceService(usecase.Allowlist{}, nil, nil, 0, logging.Discard())

	res, err := s.CheckLocation(employee("10.0.0.1"), ptr(officeLat), ptr(officeLng))
	if err != nil {
		t.Fatal(err)
	}
	if res.Configured || res.Allowed == nil || *res.Allowed || res.Reason == "" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.FencesCount != 0 || res.Center != nil {
		t.Errorf("unexpected fences in result: %+v", res)
	}
}

func TestCheckLocation_WithoutSigner(t *testing.T) {
	s := usecase.NewPresenceService(usecase.Allowlist{}, officeFence(), locationtoken.New(""), time.Minute, logging.Discard())

	res, err := s.CheckLocation(entity.Identity{ID: "u1"}, ptr(officeLat), ptr(officeLng))
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed == nil || !*res.Allowed || res.ProofToken != "" {
		t.Errorf("unexpected result: %+v", res)
	}
}
