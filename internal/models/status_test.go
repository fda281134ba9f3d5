package models_test

import (
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStatusMappingRoundTrip(t *testing.T) {
	websiteStatuses := []string{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
		models.OrderStatusRefunded,
		models.OrderStatusCompleted,
	}

	for _, ws := range websiteStatuses {
		admin := models.MapWebsiteStatusToAdmin(ws)
		assert.True(t, models.IsAdminStatus(admin), "mapped value %q should be an admin status", admin)
		assert.Equal(t, ws, models.MapAdminStatusToWebsite(admin), "round trip through %q", admin)
	}
}

func TestStatusMappingPairs(t *testing.T) {
	assert.Equal(t, models.ItemStatusNotProcessed, models.MapWebsiteStatusToAdmin(models.OrderStatusPending))
	assert.Equal(t, models.ItemStatusDispatched, models.MapWebsiteStatusToAdmin(models.OrderStatusShipped))
	assert.Equal(t, models.ItemStatusProcessingRefund, models.MapWebsiteStatusToAdmin(models.OrderStatusRefunded))
	assert.Equal(t, models.OrderStatusShipped, models.MapAdminStatusToWebsite(models.ItemStatusDispatched))
	assert.Equal(t, models.OrderStatusRefunded, models.MapAdminStatusToWebsite(models.ItemStatusProcessingRefund))
}

func TestUnknownStatusCoercesToDefault(t *testing.T) {
	assert.Equal(t, models.ItemStatusNotProcessed, models.MapWebsiteStatusToAdmin("Shipped"))
	assert.Equal(t, models.ItemStatusNotProcessed, models.MapWebsiteStatusToAdmin(""))
	assert.Equal(t, models.ItemStatusNotProcessed, models.MapWebsiteStatusToAdmin("garbage"))

	assert.Equal(t, models.OrderStatusPending, models.MapAdminStatusToWebsite("dispatched"))
	assert.Equal(t, models.OrderStatusPending, models.MapAdminStatusToWebsite(""))
}

func TestConfirmedHasNoOrderLevelCounterpart(t *testing.T) {
	assert.False(t, models.IsAdminStatus(models.ItemStatusConfirmed))
	assert.Equal(t, models.OrderStatusPending, models.MapAdminStatusToWebsite(models.ItemStatusConfirmed))
}

func TestItemCancellable(t *testing.T) {
	assert.True(t, models.ItemCancellable(models.ItemStatusNotProcessed))
	assert.True(t, models.ItemCancellable(models.ItemStatusConfirmed))
	assert.True(t, models.ItemCancellable(models.ItemStatusProcessing))

	assert.False(t, models.ItemCancellable(models.ItemStatusDispatched))
	assert.False(t, models.ItemCancellable(models.ItemStatusDelivered))
	assert.False(t, models.ItemCancellable(models.ItemStatusCancelled))
	assert.False(t, models.ItemCancellable(models.ItemStatusCompleted))
}

func TestItemBlocksOrderCancellation(t *testing.T) {
	assert.True(t, models.ItemBlocksOrderCancellation(models.ItemStatusDispatched))
	assert.True(t, models.ItemBlocksOrderCancellation(models.ItemStatusDelivered))
	assert.True(t, models.ItemBlocksOrderCancellation(models.ItemStatusCompleted))

	assert.False(t, models.ItemBlocksOrderCancellation(models.ItemStatusNotProcessed))
	assert.False(t, models.ItemBlocksOrderCancellation(models.ItemStatusProcessing))
	assert.False(t, models.ItemBlocksOrderCancellation(models.ItemStatusCancelled))
}
