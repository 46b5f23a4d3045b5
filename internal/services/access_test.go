package services

import (
	"context"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoperResolve(t *testing.T) {
	env := newTestEnv(t)
	scoper := &Scoper{Shops: env.store, Delivery: env.store}
	ctx := context.Background()

	scope, err := scoper.Resolve(ctx, admin)
	require.NoError(t, err)
	assert.True(t, scope.All)
	assert.Equal(t, "all", scope.Key(admin))

	scope, err = scoper.Resolve(ctx, lina)
	require.NoError(t, err)
	assert.Equal(t, []int64{linaShop}, scope.ShopIDs)
	assert.Equal(t, "shop_owner:2", scope.Key(lina))

	scope, err = scoper.Resolve(ctx, fleet)
	require.NoError(t, err)
	assert.Equal(t, []int64{fastWheel}, scope.CompanyIDs)
	assert.Empty(t, scope.ShopIDs)

	_, err = scoper.Resolve(ctx, sara)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestScopeApplyToOrders(t *testing.T) {
	all := Scope{All: true}
	f := all.ApplyToOrders(ports.OrderFilter{ShopIDs: []int64{9}})
	assert.Equal(t, []int64{9}, f.ShopIDs)

	shops := Scope{ShopIDs: []int64{1, 2}, CompanyIDs: []int64{}}
	assert.Equal(t, []int64{1, 2}, shops.ApplyToOrders(ports.OrderFilter{}).ShopIDs)
	assert.Equal(t, []int64{2}, shops.ApplyToOrders(ports.OrderFilter{ShopIDs: []int64{2, 3}}).ShopIDs)
	assert.Empty(t, shops.ApplyToOrders(ports.OrderFilter{ShopIDs: []int64{3}}).ShopIDs)

	fleetScope := Scope{ShopIDs: []int64{}, CompanyIDs: []int64{7}}
	f = fleetScope.ApplyToOrders(ports.OrderFilter{})
	assert.Equal(t, []int64{7}, f.CompanyIDs)
	assert.Nil(t, f.ShopIDs)

	none := Scope{ShopIDs: []int64{}, CompanyIDs: []int64{}}
	f = none.ApplyToOrders(ports.OrderFilter{})
	assert.NotNil(t, f.ShopIDs)
	assert.Empty(t, f.ShopIDs)
}

func TestScopeCanViewOrder(t *testing.T) {
	company := int64(7)
	o := &domain.Order{ShopID: 1, DeliveryCompanyID: &company}

	assert.True(t, Scope{All: true}.CanViewOrder(o))
	assert.True(t, Scope{ShopIDs: []int64{1}}.CanViewOrder(o))
	assert.True(t, Scope{CompanyIDs: []int64{7}}.CanViewOrder(o))
	assert.False(t, Scope{ShopIDs: []int64{2}, CompanyIDs: []int64{8}}.CanViewOrder(o))
	assert.False(t, Scope{CompanyIDs: []int64{7}}.CanViewOrder(&domain.Order{ShopID: 1}))
}
