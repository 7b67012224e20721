package redis

import (
	"context"
	"errors"
	"fmt"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"

	goredis "github.com/redis/go-redis/v9"
)

func ChatModeKey(projectID kernel.UUID) string {
	return "chat:mode:" + projectID.String()
}

func ChatChannel(projectID kernel.UUID) string {
	return "project:" + projectID.String() + ":chat"
}

// ChatChannels stores the chat mode of each project and announces changes to
// connected chat clients.
type ChatChannels struct {
	client goredis.UniversalClient
}

func NewChatChannels(client goredis.UniversalClient) *ChatChannels {
	return &ChatChannels{client: client}
}

// SetMode writes the mode and publishes it in one MULTI/EXEC. Setting the
// mode a project already has publishes again, which clients ignore.
func (c *ChatChannels) SetMode(ctx context.Context, projectID kernel.UUID, mode project.ChatMode) error {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, ChatModeKey(projectID), string(mode), 0)
		pipe.Publish(ctx, ChatChannel(projectID), string(mode))
		return nil
	})
	if err != nil {
		return fmt.Errorf("set chat mode of %s: %w", projectID, err)
	}
	return nil
}

// Mode returns the stored mode, ChatModeOpen when none was ever set.
func (c *ChatChannels) Mode(ctx context.Context, projectID kernel.UUID) (project.ChatMode, error) {
	mode, err := c.client.Get(ctx, ChatModeKey(projectID)).Result()
	if errors.Is(err, goredis.Nil) {
		return project.ChatModeOpen, nil
	}
	if err != nil {
		return "", fmt.Errorf("read chat mode of %s: %w", projectID, err)
	}
	return project.ChatMode(mode), nil
}
