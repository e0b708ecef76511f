package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/compiler"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
	"github.com/ezz-ae/entrestate-engine/pkg/tablespec"
)

func newTableSpecService(t *testing.T) TableSpecService {
	t.Helper()
	reg := registry.MustLoad()
	logger := zap.NewNop()
	base := compiler.New(reg, logger)
	assisted := compiler.NewAssisted(base, nil, time.Second, logger)
	return NewTableSpecService(
		base,
		assisted,
		tablespec.NewValidator(reg),
		tablespec.NewEnforcer(reg),
		NewStaticEntitlements(),
		logger,
	)
}

func TestTableSpecService_Compile(t *testing.T) {
	svc := newTableSpecService(t)

	result, err := svc.Compile(context.Background(), compiler.Input{Intent: "2BR in JVC under 2m"}, models.TierPro)
	require.NoError(t, err)
	assert.Equal(t, models.SourceRuleBased, result.Source)
	assert.Equal(t, models.GrainAsset, result.Spec.RowGrain)
	assert.Equal(t, 500, result.Spec.RowCeiling)
}

func TestTableSpecService_UnknownTierGetsFreeCeiling(t *testing.T) {
	svc := newTableSpecService(t)

	result, err := svc.Compile(context.Background(), compiler.Input{Intent: "2BR in JVC"}, models.Tier("vip"))
	require.NoError(t, err)
	assert.Equal(t, models.FreeEntitlements().RowCeiling, result.Spec.RowCeiling)
}

func TestTableSpecService_CompileWithLLM_DisabledDegrades(t *testing.T) {
	svc := newTableSpecService(t)

	result, err := svc.CompileWithLLM(context.Background(), compiler.Input{Intent: "2BR in JVC"}, models.TierPro)
	require.NoError(t, err)
	assert.Equal(t, models.SourceRuleBased, result.Source)
	assert.Contains(t, result.Warnings, models.WarnLLMDisabled)
}

func TestTableSpecService_Validate(t *testing.T) {
	svc := newTableSpecService(t)

	res := svc.Validate(models.TableSpec{
		RowGrain: models.GrainAsset,
		Signals:  []string{"not_allowed"},
	})
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "signal_not_allowed")
}

func TestTableSpecService_Enforce(t *testing.T) {
	svc := newTableSpecService(t)

	spec := models.TableSpec{
		RowGrain: models.GrainAsset,
		Signals:  []string{"asset_id", "price_aed", "yield_net"},
	}

	enforced, warnings, err := svc.Enforce(context.Background(), spec, models.TierFree)
	require.NoError(t, err)
	assert.NotContains(t, enforced.Signals, "yield_net")
	assert.NotEmpty(t, warnings)
	// The caller's spec is untouched.
	assert.Contains(t, spec.Signals, "yield_net")
}

func TestTableSpecService_EnforceRejectsEmptySignalSet(t *testing.T) {
	svc := newTableSpecService(t)

	// A directly-submitted spec with no signals is a caller fault at
	// the gate, not something the materializer should ever see.
	_, _, err := svc.Enforce(context.Background(), models.TableSpec{
		RowGrain: models.GrainAsset,
	}, models.TierPro)
	require.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "empty_signal_set")
}

func TestTableSpecService_EnforceRejectsInvalidSpec(t *testing.T) {
	svc := newTableSpecService(t)

	_, _, err := svc.Enforce(context.Background(), models.TableSpec{
		RowGrain: "parcel",
		Signals:  []string{"asset_id"},
	}, models.TierPro)
	assert.True(t, apperrors.IsValidation(err))
}
