/*
Controller package is the interface of the service.
It acts as the input receiver for the rendering layer or for the other services.
*/
package controller

import (
	"fmt"

	"github.com/blocklords/market/app/communication/message"
	"github.com/blocklords/market/app/log"

	zmq "github.com/pebbe/zmq4"
)

// HandlerFunc handles one command
type HandlerFunc func(message.Request, *log.Logger) message.Reply

// CommandHandlers keeps the command name => handler bindings
type CommandHandlers map[string]HandlerFunc

// EmptyHandlers creates the handler map to Add into
func EmptyHandlers() CommandHandlers {
	return CommandHandlers{}
}

// Add the handler of the command
func (handlers CommandHandlers) Add(command string, handler HandlerFunc) CommandHandlers {
	handlers[command] = handler
	return handlers
}

// Controller is the reply socket of the service
type Controller struct {
	socket *zmq.Socket
	logger *log.Logger
	port   string
}

// NewReply controller on the port
func NewReply(port string, logger *log.Logger) (*Controller, error) {
	// Socket to talk to clients
	socket, err := zmq.NewSocket(zmq.REP)
	if err != nil {
		return nil, fmt.Errorf("zmq.NewSocket: %w", err)
	}

	return &Controller{
		socket: socket,
		logger: logger.Child("controller"),
		port:   port,
	}, nil
}

// Run the controller. It never returns unless the socket fails.
func (c *Controller) Run(handlers CommandHandlers) error {
	if err := c.socket.Bind("tcp://*:" + c.port); err != nil {
		return fmt.Errorf("error to bind socket on port %s: %w", c.port, err)
	}

	c.logger.Info("request-reply server runs", "port", c.port)

	for {
		msg_raw, err := c.socket.RecvMessage(0)
		if err != nil {
			if reply_err := c.reply(message.Fail("socket error to receive message " + err.Error())); reply_err != nil {
				return reply_err
			}
			continue
		}

		request, err := message.ParseRequest(msg_raw)
		if err != nil {
			if reply_err := c.reply(message.Fail(err.Error())); reply_err != nil {
				return reply_err
			}
			continue
		}

		handler, ok := handlers[request.Command]
		if !ok {
			if reply_err := c.reply(message.Fail("unsupported command " + request.Command)); reply_err != nil {
				return reply_err
			}
			continue
		}

		reply := handler(request, c.logger)

		if reply_err := c.reply(reply); reply_err != nil {
			return reply_err
		}
	}
}

func (c *Controller) reply(reply message.Reply) error {
	reply_string, err := reply.ToString()
	if err != nil {
		if _, err := c.socket.SendMessage(err.Error()); err != nil {
			return fmt.Errorf("failed to reply: %w", err)
		}
		return nil
	}

	if _, err := c.socket.SendMessage(reply_string); err != nil {
		return fmt.Errorf("failed to reply: %w", err)
	}

	return nil
}
