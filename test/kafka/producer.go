// этот код не зависит от приложения,
// и нужен только для ручной отправки событий identity-провайдера в кафку
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

func main() {
	// конфигурация из config.yaml
	brokerAddress := "localhost:9092"
	topic := "identity.users"

	// JSON-событие о регистрации пользователя
	message := `{
           "type": "user.created",
           "user": {
               "id": "user_2x7Qa9test",
               "name": "Ivan Ivanov",
               "email": "test@gmail.com",
               "image_url": "https://img.example.com/u/2x7Qa9.png",
               "role": "user"
           }
        }`

	// настройки писателя (producer-а)
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokerAddress),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	log.Println("Sending message to Kafka...")
	err := writer.WriteMessages(context.Background(),
		kafka.Message{
			Value: []byte(message),
		},
	)
	if err != nil {
		log.Fatalf("Failed to write message: %v", err)
	}
	fmt.Println("Message sent successfully!")
}
