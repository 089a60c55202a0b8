package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

func TestExecuteOrderRecordsMarket(t *testing.T) {
	svc := NewService(schema.MarketUnknown)
	var got []schema.ExecutionOrder
	svc.AddListener(bus.ForwardAdds(func(o schema.ExecutionOrder) error {
		got = append(got, o)
		return nil
	}))

	order := schema.ExecutionOrder{OrderID: "Order_1", Side: schema.PricingSideBid, VisibleQuantity: 10}
	require.NoError(t, svc.ExecuteOrder(order, schema.MarketBrokerTec))
	require.NoError(t, svc.AlgoListener().ProcessAdd(schema.AlgoExecution{Order: schema.ExecutionOrder{OrderID: "Order_2"}}))

	require.Len(t, got, 2)
	assert.Equal(t, schema.MarketBrokerTec, got[0].Market)
	assert.Equal(t, schema.MarketCME, got[1].Market)

	stored, err := svc.GetData("Order_1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.VisibleQuantity)
}

func TestAlgoListenerIgnoresUpdates(t *testing.T) {
	svc := NewService(schema.MarketCME)
	require.NoError(t, svc.AlgoListener().ProcessUpdate(schema.AlgoExecution{Order: schema.ExecutionOrder{OrderID: "Order_1"}}))
	_, err := svc.GetData("Order_1")
	require.Error(t, err)
}
