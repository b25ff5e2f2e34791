package numbering_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/numbering"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/memory"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "BC-2026-00042", numbering.Format("BC", 2026, 42))
	assert.Equal(t, "FA-2027-123456", numbering.Format("FA", 2027, 123456))
}

func TestNext_SecuenciaPorTipoYAnio(t *testing.T) {
	ctx := context.Background()
	seq := memory.NewStore().Repos().Sequences
	d2026 := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	d2027 := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, want := range []string{"BL-2026-00001", "BL-2026-00002"} {
		got, err := numbering.Next(ctx, seq, nil, numbering.DeliveryNote, d2026)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := numbering.Next(ctx, seq, nil, numbering.DeliveryNote, d2027)
	require.NoError(t, err)
	assert.Equal(t, "BL-2027-00001", got)

	got, err = numbering.Next(ctx, seq, nil, numbering.Invoice, d2026)
	require.NoError(t, err)
	assert.Equal(t, "FA-2026-00001", got)

	_, err = numbering.Next(ctx, seq, nil, "devis", d2026)
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	seq := memory.NewStore().Repos().Sequences
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	taken := func(_ context.Context, n string) (bool, error) { return n == "AV-MANUEL", nil }

	got, err := numbering.Resolve(ctx, seq, taken, numbering.Cancellation, domain.EntityCancellation, "", date)
	require.NoError(t, err)
	assert.Equal(t, "AV-2026-00001", got)

	got, err = numbering.Resolve(ctx, seq, taken, numbering.Cancellation, domain.EntityCancellation, "AV-LIBRE", date)
	require.NoError(t, err)
	assert.Equal(t, "AV-LIBRE", got)

	_, err = numbering.Resolve(ctx, seq, taken, numbering.Cancellation, domain.EntityCancellation, "AV-MANUEL", date)
	var exists *domain.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, domain.EntityCancellation, exists.Entity)
}

func TestNext_SaltaNumerosManuales(t *testing.T) {
	ctx := context.Background()
	seq := memory.NewStore().Repos().Sequences
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	used := map[string]bool{"BL-2026-00001": true, "BL-2026-00002": true, "BL-2026-00004": true}
	taken := func(_ context.Context, n string) (bool, error) { return used[n], nil }

	for _, want := range []string{"BL-2026-00003", "BL-2026-00005"} {
		got, err := numbering.Resolve(ctx, seq, taken, numbering.DeliveryNote, domain.EntityDeliveryNote, "", date)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		used[got] = true
	}
}
