package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/model"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	work := &model.Category{Name: "  Work  ", Description: "office"}
	require.NoError(t, e.categories.AddCategory(ctx, work))
	assert.NotEmpty(t, work.ID)
	assert.Equal(t, "Work", work.Name)

	err := e.categories.AddCategory(ctx, &model.Category{Name: "x"})
	assert.ErrorIs(t, err, model.ErrInvalidCategory)
	assert.ErrorIs(t, err, model.ErrCategoryNameLength)

	work.Name = "Office"
	require.NoError(t, e.categories.UpdateCategory(ctx, work))

	names, err := e.categories.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{work.ID: "Office"}, names)

	task := &model.Task{Title: "File taxes", UserID: "u1", CategoryID: &work.ID}
	require.NoError(t, e.tasks.AddTask(ctx, task))

	found, err := e.tasks.SearchByCategory(ctx, work.ID)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, e.categories.DeleteCategory(ctx, work.ID))
	_, err = e.categories.GetCategory(ctx, work.ID)
	assert.ErrorIs(t, err, model.ErrCategoryNotFound)

	stored, err := e.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CategoryID)

	list, err := e.categories.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
