package mocks

//go:generate mockgen -destination=./mock_executor.go -package=mocks github.com/tradehook-lab/tradehook/internal/executor TradeExecutor
//go:generate mockgen -destination=./mock_calllog.go -package=mocks github.com/tradehook-lab/tradehook/internal/calllog Log
