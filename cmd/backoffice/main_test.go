package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storeledger/backoffice/internal/app"
	_ "github.com/storeledger/backoffice/internal/testing/guard"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	require.NotPanics(t, main)
}
