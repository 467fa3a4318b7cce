// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package confirm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	yes, err := Fixed(true).Confirm("destroy everything?")
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := Fixed(false).Confirm("destroy everything?")
	require.NoError(t, err)
	assert.False(t, no)
}
