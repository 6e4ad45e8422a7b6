package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

func newConfigEnv() (*ConfigService, *fakeTenantRepo) {
	tenants := newFakeTenantRepo()
	tenants.configs["tenant-1"] = testTenantConfig()
	svc := NewConfigService(ConfigDependencies{TenantRepo: tenants, Logger: zap.NewNop()})
	return svc, tenants
}

func TestUpdateTenantConfigRequiresAdmin(t *testing.T) {
	t.Parallel()

	svc, _ := newConfigEnv()
	_, err := svc.UpdateTenantConfig(context.Background(), staffActor(), "tenant-1", TenantSetupInput{
		StaffRoleID: "role-new-staff",
	})
	if !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}
}

func TestUpdateTenantConfigReplacesWiring(t *testing.T) {
	t.Parallel()

	svc, tenants := newConfigEnv()
	ctx := context.Background()

	updated, err := svc.UpdateTenantConfig(ctx, adminActor(), "tenant-1", TenantSetupInput{
		AdminRoleID:         "role-admin",
		StaffRoleID:         "role-staff-2",
		HelperRoleID:        "role-helper",
		TranscriptChannelID: "chan-transcripts",
	})
	if err != nil {
		t.Fatalf("UpdateTenantConfig: %v", err)
	}
	if updated.StaffRoleID != "role-staff-2" || updated.TranscriptChannelID != "chan-transcripts" {
		t.Fatalf("unexpected config: %+v", updated)
	}
	// Omitted fields clear the assignment.
	if updated.BlockedRoleID != "" {
		t.Fatalf("expected blocked role cleared, got %q", updated.BlockedRoleID)
	}

	stored, err := tenants.GetTenantConfig(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("GetTenantConfig: %v", err)
	}
	if stored.StaffRoleID != "role-staff-2" {
		t.Fatalf("config not persisted: %+v", stored)
	}
}

func TestPlatformAdminBypassesUnsetRoles(t *testing.T) {
	t.Parallel()

	tenants := newFakeTenantRepo()
	svc := NewConfigService(ConfigDependencies{TenantRepo: tenants, Logger: zap.NewNop()})
	ctx := context.Background()

	// Bootstrap: a fresh tenant has no admin role yet, so only a
	// platform-admin actor can run the first setup.
	operator := domain.Actor{ID: "op-1", PlatformAdmin: true}
	if _, err := svc.UpdateTenantConfig(ctx, operator, "tenant-new", TenantSetupInput{AdminRoleID: "role-admin"}); err != nil {
		t.Fatalf("UpdateTenantConfig: %v", err)
	}

	stranger := domain.Actor{ID: "user-1", RoleIDs: []string{"role-whatever"}}
	if _, err := svc.UpdateTenantConfig(ctx, stranger, "tenant-new", TenantSetupInput{}); !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}
}

func TestResetTenantConfigClearsOverrides(t *testing.T) {
	t.Parallel()

	svc, tenants := newConfigEnv()
	ctx := context.Background()
	if err := svc.SetCatalogPoints(ctx, adminActor(), "tenant-1", map[string]int{"Grim Express": 99}); err != nil {
		t.Fatalf("SetCatalogPoints: %v", err)
	}

	if err := svc.ResetTenantConfig(ctx, adminActor(), "tenant-1"); err != nil {
		t.Fatalf("ResetTenantConfig: %v", err)
	}

	catalog, err := tenants.GetServiceCatalog(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("GetServiceCatalog: %v", err)
	}
	if catalog["Grim Express"].Points != 10 {
		t.Fatalf("expected default points restored, got %d", catalog["Grim Express"].Points)
	}
}

func TestCatalogOverridesMergeOverDefaults(t *testing.T) {
	t.Parallel()

	svc, _ := newConfigEnv()
	ctx := context.Background()

	if err := svc.SetCatalogPoints(ctx, adminActor(), "tenant-1", map[string]int{
		"Grim Express":   15,
		"Story Campaign": 20,
	}); err != nil {
		t.Fatalf("SetCatalogPoints: %v", err)
	}
	if err := svc.SetCatalogSlots(ctx, adminActor(), "tenant-1", map[string]int{"Grim Express": 4}); err != nil {
		t.Fatalf("SetCatalogSlots: %v", err)
	}

	catalog, err := svc.GetServiceCatalog(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("GetServiceCatalog: %v", err)
	}
	if entry := catalog["Grim Express"]; entry.Points != 15 || entry.Capacity != 4 {
		t.Fatalf("expected overridden entry 15/4, got %+v", entry)
	}
	if entry := catalog["Story Campaign"]; entry.Points != 20 || entry.Capacity != domain.DefaultSlotCapacity {
		t.Fatalf("expected new entry with default capacity, got %+v", entry)
	}
	if entry := catalog["Ultra Weekly Express"]; entry.Points != 12 {
		t.Fatalf("expected untouched default, got %+v", entry)
	}
}
