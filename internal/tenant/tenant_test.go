package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klinika/internal/tenant"
)

type record struct {
	code string
}

func (r *record) TenantID() string        { return r.code }
func (r *record) SetTenantID(code string) { r.code = code }

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("unset by default", func(t *testing.T) {
		t.Parallel()
		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)

		_, err := tenant.Require(context.Background())
		assert.ErrorIs(t, err, tenant.ErrUnresolved)
	})

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()
		ctx := tenant.WithClinicCode(context.Background(), " DEMO123 ")
		code, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "DEMO123", code)
	})

	t.Run("empty code leaves context unset", func(t *testing.T) {
		t.Parallel()
		ctx := tenant.WithClinicCode(context.Background(), "   ")
		_, ok := tenant.FromContext(ctx)
		assert.False(t, ok)
	})

	t.Run("overwrite", func(t *testing.T) {
		t.Parallel()
		ctx := tenant.WithClinicCode(context.Background(), "T1")
		ctx = tenant.WithClinicCode(ctx, "T2")
		code, _ := tenant.FromContext(ctx)
		assert.Equal(t, "T2", code)
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()
		parent := tenant.WithClinicCode(context.Background(), "T1")
		cleared := tenant.Clear(parent)

		_, ok := tenant.FromContext(cleared)
		assert.False(t, ok)

		code, ok := tenant.FromContext(parent)
		require.True(t, ok, "clearing must not affect the parent context")
		assert.Equal(t, "T1", code)
	})

	t.Run("logger extractor", func(t *testing.T) {
		t.Parallel()
		extract := tenant.LoggerExtractor()

		_, ok := extract(context.Background())
		assert.False(t, ok)

		attr, ok := extract(tenant.WithClinicCode(context.Background(), "T1"))
		require.True(t, ok)
		assert.Equal(t, "clinic_code", attr.Key)
		assert.Equal(t, "T1", attr.Value.String())
	})
}

func TestStamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ctxCode string
		recCode string
		want    string
		wantErr error
	}{
		{name: "fills empty record from context", ctxCode: "T1", want: "T1"},
		{name: "keeps matching code", ctxCode: "T1", recCode: "T1", want: "T1"},
		{name: "rejects foreign code", ctxCode: "T1", recCode: "T2", want: "T2", wantErr: tenant.ErrConflict},
		{name: "fails without any code", wantErr: tenant.ErrUnresolved},
		{name: "keeps explicit code without context", recCode: "T2", want: "T2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := tenant.WithClinicCode(context.Background(), tt.ctxCode)
			rec := &record{code: tt.recCode}

			err := tenant.Stamp(ctx, rec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, rec.code)
		})
	}
}
