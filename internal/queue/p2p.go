package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/libp2p/go-libp2p"
	ps "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/config"
)

// TopicPrefix is the prefix for all gossipsub topics.
const TopicPrefix = "/asteroidfeed/neo/"

// defaultReadyTimeout bounds how long Publish waits for a topic subscriber.
const defaultReadyTimeout = 10 * time.Second

// ErrNoPeers is returned by NewP2PPublisher when no bootstrap peer could be
// reached. Gossip without peers delivers nothing.
var ErrNoPeers = errors.New("p2p: no bootstrap peer connected")

// TopicName returns the full topic name.
func TopicName(name string) string {
	return TopicPrefix + name
}

// P2PPublisher gossips each message on a libp2p pubsub topic. Attributes are
// not carried; subscribers receive the body only.
type P2PPublisher struct {
	host   host.Host
	pubsub *ps.PubSub
	topic  *ps.Topic
	cancel context.CancelFunc

	readyTimeout time.Duration
}

// NewP2PPublisher starts a libp2p host, dials the bootstrap peers and joins
// the configured topic.
func NewP2PPublisher(ctx context.Context, cfg config.P2PConfig) (*P2PPublisher, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("p2p topic is required")
	}

	listen := cfg.Listen
	if len(listen) == 0 {
		listen = []string{"/ip4/0.0.0.0/tcp/0"}
	}

	h, err := libp2p.New(libp2p.ListenAddrStrings(listen...))
	if err != nil {
		return nil, fmt.Errorf("failed to create libp2p host: %w", err)
	}

	psCtx, cancel := context.WithCancel(context.Background())
	gossip, err := ps.NewGossipSub(psCtx, h)
	if err != nil {
		cancel()
		h.Close()
		return nil, fmt.Errorf("failed to create gossipsub: %w", err)
	}

	connected := 0
	for _, addr := range cfg.Bootstrap {
		info, err := parsePeerAddr(addr)
		if err != nil {
			log.Warnf("Skipping bootstrap peer %q: %v", addr, err)
			continue
		}
		if err := h.Connect(ctx, *info); err != nil {
			log.Warnf("Failed to connect to bootstrap peer %s: %v", info.ID, err)
			continue
		}
		log.Debugf("Connected to bootstrap peer %s", info.ID)
		connected++
	}
	if connected == 0 {
		cancel()
		h.Close()
		return nil, fmt.Errorf("%w (%d configured)", ErrNoPeers, len(cfg.Bootstrap))
	}

	topicName := TopicName(cfg.Topic)
	topic, err := gossip.Join(topicName)
	if err != nil {
		cancel()
		h.Close()
		return nil, fmt.Errorf("failed to join topic %s: %w", topicName, err)
	}

	log.Infof("Publishing to gossipsub topic %s as %s", topicName, h.ID())
	return &P2PPublisher{
		host:         h,
		pubsub:       gossip,
		topic:        topic,
		cancel:       cancel,
		readyTimeout: defaultReadyTimeout,
	}, nil
}

// PeerID returns the local host's peer id.
func (p *P2PPublisher) PeerID() peer.ID {
	return p.host.ID()
}

// Publish gossips msg.Body once at least one subscriber is on the topic.
func (p *P2PPublisher) Publish(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, p.readyTimeout)
	defer cancel()

	if err := p.topic.Publish(ctx, msg.Body, ps.WithReadiness(ps.MinTopicSize(1))); err != nil {
		return fmt.Errorf("gossip %s: %w", msg.Key, err)
	}
	return nil
}

// Close leaves the topic and shuts the host down.
func (p *P2PPublisher) Close() error {
	if err := p.topic.Close(); err != nil {
		log.Warnf("Failed to close topic: %v", err)
	}
	p.cancel()
	return p.host.Close()
}

func parsePeerAddr(addr string) (*peer.AddrInfo, error) {
	ma, err := multiaddr.NewMultiaddr(strings.TrimSpace(addr))
	if err != nil {
		return nil, err
	}
	return peer.AddrInfoFromP2pAddr(ma)
}
