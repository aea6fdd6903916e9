package main

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mumuhhh/hiveadapter/adapter"
	"github.com/mumuhhh/hiveadapter/adapter/mocks"
)

func newTestSession(t *testing.T, runner *mocks.MockRunner) *adapter.Session {
	runner.EXPECT().Exec(gomock.Any(), "USE warehouse").Return(nil)
	runner.EXPECT().Query(gomock.Any(), "SHOW TABLES 'dual'").
		Return(&adapter.Result{Columns: []string{"tab_name"}, Rows: [][]interface{}{{"dual"}}}, nil)
	session, err := adapter.New(context.Background(), adapter.Config{Host: "hive.internal", Database: "warehouse"}, runner)
	require.NoError(t, err)
	return session
}

func TestRunReturnsExitCodeWithoutExiting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	runner := mocks.NewMockRunner(ctrl)
	session := newTestSession(t, runner)

	*existsTable = "missing"
	runner.EXPECT().Query(gomock.Any(), "SHOW TABLES 'missing'").
		Return(&adapter.Result{Columns: []string{"tab_name"}}, nil)
	runner.EXPECT().Close().Return(nil)

	code, err := run(context.Background(), session, exists.FullCommand())
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.NoError(t, session.Close())
}

func TestRunReturnsCommandError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	runner := mocks.NewMockRunner(ctrl)
	session := newTestSession(t, runner)

	*primaryKeyTable = "empty"
	runner.EXPECT().Query(gomock.Any(), "SHOW TABLES 'empty'").
		Return(&adapter.Result{Columns: []string{"tab_name"}}, nil)
	runner.EXPECT().Close().Return(nil)

	code, err := run(context.Background(), session, primaryKey.FullCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table empty has no columns")
	assert.Equal(t, 1, code)
	assert.NoError(t, session.Close())
}
